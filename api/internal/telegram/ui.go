package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/toolkit"
)

const (
	cbView     = "v:"
	cbOption   = "f:"
	cbToggle   = "aw:toggle:"
	cbFinalize = "aw:final:"
	cbPractice = "pr:start"
)

// The pronunciation sub-flow is reached from a speaking result, not the menu.
func makeViewsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, v := range toolkit.Views() {
		if v.Parent != "" {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(v.Label, cbView+string(v.Kind)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeOptionsKeyboard(f toolkit.Field) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, o := range f.Options {
		label := o
		if o == f.Default {
			label = "✓ " + o
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbOption, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// makeAwardsKeyboard has one toggle per criterion and a finalize button while
// the session is collecting. A finalized session has no buttons. Every button
// carries seq so presses on an older rubric message can be told apart.
func makeAwardsKeyboard(st gamify.AwardState, seq uint64) *tgbotapi.InlineKeyboardMarkup {
	if st.Finalized {
		return nil
	}
	awarded := make(map[string]bool, len(st.Awarded))
	for _, c := range st.Awarded {
		awarded[c] = true
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range st.Criteria {
		mark := "⬜"
		if awarded[c.Category] {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s (%d)", mark, c.Category, c.Points), fmt.Sprintf("%s%d:%d", cbToggle, seq, i)),
		))
	}
	if len(st.Criteria) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Finalize awards", fmt.Sprintf("%s%d", cbFinalize, seq)),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func makePracticeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎙 Practice pronunciation", cbPractice),
	))
}

func formatAwards(st gamify.AwardState) string {
	var b strings.Builder
	b.WriteString("🏆 Gamification\n")
	fmt.Fprintf(&b, "Points: %d / %d\n", st.TotalAwarded, st.TotalPossiblePoints)
	if st.Badge != nil {
		fmt.Fprintf(&b, "Badge: %s\n%s\n", st.Badge.Name, st.Badge.Description)
	}
	switch {
	case !st.Finalized:
		b.WriteString("\nTap a category to award it, then finalize.")
	case st.BadgeUnlocked && st.Badge != nil:
		fmt.Fprintf(&b, "\n🏅 Badge unlocked: %s!", st.Badge.Name)
	case st.Badge != nil:
		b.WriteString("\nFinal score recorded. The badge needs 80% of the points.")
	default:
		b.WriteString("\nFinal score recorded.")
	}
	return b.String()
}

func fieldPrompt(f toolkit.Field) string {
	var b strings.Builder
	b.WriteString(f.Label)
	switch {
	case f.Type == toolkit.FieldChoice && !f.Strict:
		b.WriteString(": pick one or type your own.")
	case f.Type == toolkit.FieldChoice:
		b.WriteString(": pick one.")
	default:
		b.WriteString(":")
	}
	if f.Placeholder != "" {
		b.WriteString("\n")
		b.WriteString(f.Placeholder)
	}
	return b.String()
}
