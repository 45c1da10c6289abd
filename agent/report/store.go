// Package report persists end-of-call reports to Postgres.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"callflow/agent/contract"
)

type Config struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type callReportRow struct {
	bun.BaseModel `bun:"table:call_reports,alias:cr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SessionID string    `bun:"session_id,notnull"`
	UserID    string    `bun:"user_id,notnull"`
	Domain    string    `bun:"domain,notnull"`
	Language  string    `bun:"language"`
	Summary   string    `bun:"summary,type:jsonb,notnull,default:'{}'"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// PostgresStore writes call reports through bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("report: dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// EnsureSchema creates the call_reports table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*callReportRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("report: create table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, r contract.CallReport) error {
	summary := strings.TrimSpace(r.Summary)
	if summary == "" {
		summary = "{}"
	}
	createdAt := r.EndedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := &callReportRow{
		SessionID: r.SessionID,
		UserID:    r.UserID,
		Domain:    r.Domain,
		Language:  r.Language,
		Summary:   summary,
		CreatedAt: createdAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("report: insert call report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
