package gamify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Great job today!

**Point System:** Fluency: 25 points, Accuracy: 25 points, totaling 50 points
**Badge Unlocked:** **Career Champion**
- You handled every interview question with confidence.
More notes here.`

func TestSplit(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		text := "Role play\nA: Hi" + Separator + "**Point System:** x" + Separator + "tail"
		ex, gm, ok := Split(text)
		require.True(t, ok)
		assert.Equal(t, "Role play\nA: Hi", ex)
		assert.Equal(t, text, ex+Separator+gm)
		assert.NotContains(t, ex, Separator)
	})
	t.Run("absent", func(t *testing.T) {
		ex, gm, ok := Split("just an exercise")
		assert.False(t, ok)
		assert.Equal(t, "just an exercise", ex)
		assert.Empty(t, gm)
	})
}

func TestExtract_PointSystem(t *testing.T) {
	ext := Extract(sample)

	assert.Equal(t, []Criterion{{"Fluency", 25}, {"Accuracy", 25}}, ext.Criteria)
	assert.Equal(t, 50, ext.TotalPossiblePoints)
	require.NotNil(t, ext.Badge)
	assert.Equal(t, "Career Champion", ext.Badge.Name)
	assert.Equal(t, "You handled every interview question with confidence.", ext.Badge.Description)
	assert.False(t, ext.Empty())
}

func TestExtract_Variants(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []Criterion
		total int
	}{
		{
			name:  "example wrapper and etc",
			text:  "**Point System:** (e.g., Fluency: 25 points, Pronunciation: 25 points, etc., totaling 100 points)",
			want:  []Criterion{{"Fluency", 25}, {"Pronunciation", 25}},
			total: 50,
		},
		{
			name:  "and separator with pts",
			text:  "**point system:** Grammar (10 pts), Vocabulary 15 pt and Range: 5 points",
			want:  []Criterion{{"Grammar", 10}, {"Vocabulary", 15}, {"Range", 5}},
			total: 30,
		},
		{
			name:  "clauses without quantity are dropped",
			text:  "**Point System:** Fluency: 20 points, bonus for humour, Accuracy: 20 points",
			want:  []Criterion{{"Fluency", 20}, {"Accuracy", 20}},
			total: 40,
		},
		{
			name:  "duplicates keep first",
			text:  "**Point System:** Fluency: 20 points, Fluency: 30 points",
			want:  []Criterion{{"Fluency", 20}},
			total: 20,
		},
		{
			name:  "emphasis around category",
			text:  "**Point System:** *Clarity*: 10 points",
			want:  []Criterion{{"Clarity", 10}},
			total: 10,
		},
		{
			name:  "total only",
			text:  "Award up to Total: 80 points for the task.",
			want:  []Criterion{{FallbackCategory, 80}},
			total: 80,
		},
		{
			name: "nothing",
			text: "Practise with a partner.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := Extract(tt.text)
			assert.Equal(t, tt.want, ext.Criteria)
			assert.Equal(t, tt.total, ext.TotalPossiblePoints)
		})
	}
}

func TestExtract_BadgeDefaultDescription(t *testing.T) {
	ext := Extract("**Badge Unlocked:** **Small Talk Star**")
	require.NotNil(t, ext.Badge)
	assert.Equal(t, "Small Talk Star", ext.Badge.Name)
	assert.Equal(t, DefaultBadgeDescription, ext.Badge.Description)
	assert.Empty(t, ext.Criteria)
	assert.Zero(t, ext.TotalPossiblePoints)
	assert.False(t, ext.Empty())
}

func TestExtract_EmptyOnUnrelatedText(t *testing.T) {
	assert.True(t, Extract("").Empty())
	assert.True(t, Extract("Total: many points").Empty())
}

func TestAwards_Toggle(t *testing.T) {
	a := NewAwards(Extract(sample))

	assert.True(t, a.Toggle("Fluency"))
	assert.True(t, a.Awarded("Fluency"))
	assert.Equal(t, 25, a.TotalAwarded())

	assert.True(t, a.Toggle("Fluency"))
	assert.False(t, a.Awarded("Fluency"))
	assert.Zero(t, a.TotalAwarded())

	assert.False(t, a.Toggle("Creativity"))
	assert.Empty(t, a.State().Awarded)
}

func TestAwards_FinalizeFreezes(t *testing.T) {
	a := NewAwards(Extract(sample))
	a.Toggle("Accuracy")
	a.Finalize()
	a.Finalize()

	assert.False(t, a.Toggle("Fluency"))
	assert.False(t, a.Toggle("Accuracy"))
	assert.Equal(t, []string{"Accuracy"}, a.State().Awarded)
	assert.True(t, a.Finalized())
}

func TestAwards_BadgeThreshold(t *testing.T) {
	ext := Extraction{
		TotalPossiblePoints: 100,
		Criteria:            []Criterion{{"A", 40}, {"B", 40}, {"C", 19}, {"D", 1}},
	}

	t.Run("not before finalize", func(t *testing.T) {
		a := NewAwards(ext)
		for _, c := range ext.Criteria {
			a.Toggle(c.Category)
		}
		assert.Equal(t, 100, a.TotalAwarded())
		assert.False(t, a.BadgeUnlocked())
	})
	t.Run("exactly 80 percent", func(t *testing.T) {
		a := NewAwards(ext)
		a.Toggle("A")
		a.Toggle("B")
		a.Finalize()
		assert.True(t, a.BadgeUnlocked())
	})
	t.Run("just below", func(t *testing.T) {
		a := NewAwards(ext)
		a.Toggle("A")
		a.Toggle("C")
		a.Toggle("D")
		a.Finalize()
		assert.Equal(t, 60, a.TotalAwarded())
		assert.False(t, a.BadgeUnlocked())
	})
	t.Run("zero total", func(t *testing.T) {
		a := NewAwards(Extraction{Badge: &Badge{Name: "x"}})
		a.Finalize()
		assert.False(t, a.BadgeUnlocked())
	})
}

func TestRestore(t *testing.T) {
	a := NewAwards(Extract(sample))
	a.Toggle("Fluency")
	a.Toggle("Accuracy")
	a.Finalize()
	st := a.State()
	assert.True(t, st.BadgeUnlocked)
	assert.Equal(t, 50, st.TotalAwarded)

	st.Awarded = append(st.Awarded, "Bogus")
	b := Restore(st)
	assert.Equal(t, a.State(), b.State())
	assert.False(t, b.Toggle("Fluency"))
}
