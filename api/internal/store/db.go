// Package store persists generation history and finalized awards in
// PostgreSQL through database/sql and the pgx driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

var ErrNotFound = sql.ErrNoRows

// Open connects and pings. The pool is sized for a small deployment.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

const schema = `
create table if not exists generations (
  id          uuid primary key,
  created_at  timestamptz not null default now(),
  source      text not null default '',
  kind        text not null,
  model       text not null,
  params      jsonb not null default '{}'::jsonb,
  result_text text not null default '',
  error       text not null default '',
  duration_ms bigint not null default 0
);
create index if not exists generations_source_created_idx on generations (source, created_at desc);

create table if not exists award_results (
  session_id     text primary key,
  created_at     timestamptz not null default now(),
  source         text not null default '',
  badge_name     text not null default '',
  total_possible int not null,
  total_awarded  int not null,
  badge_unlocked boolean not null,
  state_json     jsonb not null
);`

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ResolveDSN returns explicit when set, otherwise a DSN built from PGHOST and
// POSTGRES_* variables. It returns "" when neither is configured.
func ResolveDSN(explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	host := strings.TrimSpace(os.Getenv("PGHOST"))
	if host == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenvDefault("POSTGRES_USER", "esl"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, getenvDefault("PGPORT", "5432")),
		Path:     "/" + getenvDefault("POSTGRES_DB", "esl_toolkit"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes a DSN without its password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, u.User.Username())
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, u.User.Username())
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
