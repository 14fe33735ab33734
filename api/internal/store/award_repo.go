package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"esl-toolkit/api/internal/gamify"
)

// AwardRepo keeps the final score of every finalized award session.
type AwardRepo struct{ DB *sql.DB }

func NewAwardRepo(db *sql.DB) *AwardRepo { return &AwardRepo{DB: db} }

type AwardRow struct {
	SessionID string            `json:"sessionId"`
	CreatedAt time.Time         `json:"createdAt"`
	Source    string            `json:"source"`
	State     gamify.AwardState `json:"state"`
}

// Upsert stores st under sessionID. PK: session_id.
func (r *AwardRepo) Upsert(ctx context.Context, sessionID, source string, st gamify.AwardState) error {
	js, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal award state: %w", err)
	}
	badge := ""
	if st.Badge != nil {
		badge = st.Badge.Name
	}
	const q = `
insert into award_results (session_id, source, badge_name, total_possible, total_awarded, badge_unlocked, state_json)
values ($1,$2,$3,$4,$5,$6,$7)
on conflict (session_id) do update
set badge_name = excluded.badge_name,
    total_possible = excluded.total_possible,
    total_awarded = excluded.total_awarded,
    badge_unlocked = excluded.badge_unlocked,
    state_json = excluded.state_json`
	_, err = r.DB.ExecContext(ctx, q, sessionID, source, badge,
		st.TotalPossiblePoints, st.TotalAwarded, st.BadgeUnlocked, js)
	return err
}

func (r *AwardRepo) Find(ctx context.Context, sessionID string) (AwardRow, error) {
	const q = `select session_id, created_at, source, state_json from award_results where session_id = $1`
	var (
		row AwardRow
		js  []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, sessionID).Scan(&row.SessionID, &row.CreatedAt, &row.Source, &js); err != nil {
		return AwardRow{}, err
	}
	if err := json.Unmarshal(js, &row.State); err != nil {
		return AwardRow{}, ErrNotFound
	}
	return row, nil
}

// CountUnlocked returns how many badges source has unlocked.
func (r *AwardRepo) CountUnlocked(ctx context.Context, source string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`select count(*) from award_results where source = $1 and badge_unlocked`, source).Scan(&n)
	return n, err
}
