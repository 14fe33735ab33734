package telegram

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"esl-toolkit/api/internal/util"
)

func (r *Router) sendHistory(ctx context.Context, cid int64) {
	if r.History == nil {
		r.send(cid, "History is not enabled on this bot.")
		return
	}
	rows, err := r.History.Recent(ctx, source(cid), 5)
	if err != nil {
		r.logger().Error("history", zap.Int64("chat_id", cid), zap.Error(err))
		r.send(cid, "Could not load history.")
		return
	}
	if len(rows) == 0 {
		r.send(cid, "No generations yet.")
		return
	}
	var b strings.Builder
	b.WriteString("🗂 Recent generations:\n")
	for i, row := range rows {
		status := "ok"
		if row.Error != "" {
			status = "failed"
		}
		topic := row.Params["topic"]
		if topic == "" {
			topic = util.Truncate(row.Text, 40)
		}
		fmt.Fprintf(&b, "%d) %s · %s · %s · %s\n", i+1, row.CreatedAt.Format("2006-01-02 15:04"), row.Kind, status, topic)
	}
	if r.Awards != nil {
		if n, err := r.Awards.CountUnlocked(ctx, source(cid)); err == nil && n > 0 {
			fmt.Fprintf(&b, "\n🏅 Badges unlocked so far: %d\n", n)
		}
	}
	r.send(cid, b.String())
}
