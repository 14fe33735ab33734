package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/toolkit"
)

func TestResolveDSN(t *testing.T) {
	assert.Equal(t, "postgres://x", ResolveDSN(" postgres://x "))

	t.Setenv("PGHOST", "")
	assert.Empty(t, ResolveDSN(""))

	t.Setenv("PGHOST", "db")
	t.Setenv("PGPORT", "")
	t.Setenv("POSTGRES_USER", "teacher")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	t.Setenv("POSTGRES_DB", "")
	assert.Equal(t, "postgres://teacher:s3cret@db:5432/esl_toolkit?sslmode=disable", ResolveDSN(""))
}

func TestSafeDSNSummary(t *testing.T) {
	s := SafeDSNSummary("postgres://teacher:s3cret@db:5432/esl?sslmode=disable")
	assert.Equal(t, "host=db port=5432 db=esl user=teacher", s)
	assert.NotContains(t, s, "s3cret")
	assert.Equal(t, "host=db db=esl user=u", SafeDSNSummary("postgres://u@db/esl"))
}

type rowStub struct{ vals []any }

func (r rowStub) Scan(dest ...any) error {
	if len(dest) != len(r.vals) {
		return errors.New("arity")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *int64:
			*p = r.vals[i].(int64)
		case *time.Time:
			*p = r.vals[i].(time.Time)
		case *[]byte:
			*p = r.vals[i].([]byte)
		}
	}
	return nil
}

func TestScanGeneration(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	row, err := scanGeneration(rowStub{vals: []any{
		"id-1", ts, "tg:7", "proDev", "gemini-2.5-pro", []byte(`{"topic":"Phonics"}`), "# Article", "", int64(1200),
	}})
	require.NoError(t, err)
	assert.Equal(t, toolkit.ProDev, row.Kind)
	assert.Equal(t, "Phonics", row.Params["topic"])
	assert.Equal(t, int64(1200), row.DurationMS)

	row, err = scanGeneration(rowStub{vals: []any{
		"id-2", ts, "", "proDev", "m", []byte(`not json`), "", "boom", int64(0),
	}})
	require.NoError(t, err)
	assert.Empty(t, row.Params)
	assert.Equal(t, "boom", row.Error)
}

// Runs only against a real database, e.g. DATABASE_TEST_URL=postgres://...
func TestRepos_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(ctx, db))

	gens := NewGenerationRepo(db)
	src := "test:" + time.Now().Format(time.RFC3339Nano)
	require.NoError(t, gens.Record(ctx, toolkit.Record{
		Source: src, Kind: toolkit.LessonPlanner, Model: "m",
		Params: map[string]string{"topic": "Food"}, Text: "# Plan", Duration: time.Second,
	}))
	rows, err := gens.Recent(ctx, src, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Food", rows[0].Params["topic"])

	got, err := gens.Get(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "# Plan", got.Text)

	awards := NewAwardRepo(db)
	a := gamify.NewAwards(gamify.Extraction{
		TotalPossiblePoints: 10,
		Criteria:            []gamify.Criterion{{Category: "Fluency", Points: 10}},
		Badge:               &gamify.Badge{Name: "Star", Description: "ok"},
	})
	a.Toggle("Fluency")
	a.Finalize()
	require.NoError(t, awards.Upsert(ctx, src, src, a.State()))
	found, err := awards.Find(ctx, src)
	require.NoError(t, err)
	assert.True(t, found.State.BadgeUnlocked)
	n, err := awards.CountUnlocked(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = awards.Find(ctx, "missing-"+src)
	assert.ErrorIs(t, err, ErrNotFound)
}
