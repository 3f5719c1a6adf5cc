package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		slug        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		fields      JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id            BIGSERIAL PRIMARY KEY,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		data          JSONB NOT NULL DEFAULT '{}'::jsonb,
		status        TEXT NOT NULL DEFAULT 'draft',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_collection_id ON entries(collection_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_status ON entries(status)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at)`,
}

// openPostgres 打开PostgreSQL连接（lib/pq 或 pgx）
func openPostgres(ctx context.Context, dialect Dialect, cfg DatabaseConfig, log *zap.SugaredLogger) (*sql.DB, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the %s driver", dialect)
	}

	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		dsn, // 最后尝试原始DSN
	}
	if strings.Contains(dsn, "connect_timeout=") {
		strategies = strategies[1:]
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}

	var lastErr error
	for i, strategy := range strategies {
		db, err := sql.Open(dialect.DriverName(), strategy)
		if err != nil {
			log.Warnw("connection strategy failed to open", "strategy", i+1, "error", err)
			lastErr = err
			continue
		}

		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen / 2)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err = db.PingContext(ctx); err != nil {
			log.Warnw("connection strategy failed to ping", "strategy", i+1, "error", err)
			db.Close()
			lastErr = err
			continue
		}
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL with all strategies: %w", lastErr)
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}
	// key=value DSNs take space separated parameters
	if !strings.Contains(dsn, "://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}

func isPQUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

func isPgxUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
