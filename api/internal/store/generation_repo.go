package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"esl-toolkit/api/internal/toolkit"
)

type GenerationRepo struct{ DB *sql.DB }

func NewGenerationRepo(db *sql.DB) *GenerationRepo { return &GenerationRepo{DB: db} }

type GenerationRow struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	Source     string            `json:"source"`
	Kind       toolkit.Kind      `json:"kind"`
	Model      string            `json:"model"`
	Params     map[string]string `json:"params"`
	Text       string            `json:"text"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"durationMs"`
}

// Record implements toolkit.Recorder.
func (r *GenerationRepo) Record(ctx context.Context, rec toolkit.Record) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	const q = `
insert into generations (id, source, kind, model, params, result_text, error, duration_ms)
values ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.DB.ExecContext(ctx, q,
		uuid.NewString(), rec.Source, string(rec.Kind), rec.Model, params,
		rec.Text, rec.Err, rec.Duration.Milliseconds(),
	)
	return err
}

// Recent returns the newest rows first. An empty source matches every source.
func (r *GenerationRepo) Recent(ctx context.Context, source string, limit int) ([]GenerationRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `
select id, created_at, source, kind, model, params, result_text, error, duration_ms
from generations
where ($1 = '' or source = $1)
order by created_at desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRow
	for rows.Next() {
		row, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *GenerationRepo) Get(ctx context.Context, id string) (GenerationRow, error) {
	const q = `
select id, created_at, source, kind, model, params, result_text, error, duration_ms
from generations where id = $1`
	return scanGeneration(r.DB.QueryRowContext(ctx, q, id))
}

// PurgeOlderThan deletes old history so the table does not grow forever.
func (r *GenerationRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	res, err := r.DB.ExecContext(ctx, `delete from generations where created_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(s scanner) (GenerationRow, error) {
	var (
		row    GenerationRow
		kind   string
		params []byte
	)
	if err := s.Scan(&row.ID, &row.CreatedAt, &row.Source, &kind, &row.Model, &params,
		&row.Text, &row.Error, &row.DurationMS); err != nil {
		return GenerationRow{}, err
	}
	row.Kind = toolkit.Kind(kind)
	if err := json.Unmarshal(params, &row.Params); err != nil {
		row.Params = map[string]string{}
	}
	return row, nil
}
