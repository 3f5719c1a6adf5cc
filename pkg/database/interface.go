package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DatabaseInterface 定义存储层访问接口
// Stores only depend on these parameterized primitives; every query is written
// with `?` placeholders and rebound for the active dialect.
type DatabaseInterface interface {
	Dialect() Dialect

	// Count runs a `SELECT COUNT(*) ...` query.
	Count(ctx context.Context, query string, args ...interface{}) (int, error)
	QueryRows(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
	// Insert runs an INSERT ending in `RETURNING id` and returns the generated id.
	Insert(ctx context.Context, query string, args ...interface{}) (int64, error)
	// Exec runs an UPDATE or DELETE and returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close() error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string // sqlite | postgres | pgx
	DSN          string
	SQLitePath   string
	MaxOpenConns int
	Debug        bool
}

// DB is the explicitly constructed storage handle shared by all stores.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	log     *zap.SugaredLogger
	debug   bool
}

var _ DatabaseInterface = (*DB)(nil)

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, cfg DatabaseConfig, log *zap.SugaredLogger) (*DB, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	switch dialect {
	case SQLite:
		conn, err = openSQLite(ctx, cfg, log)
	default:
		conn, err = openPostgres(ctx, dialect, cfg, log)
	}
	if err != nil {
		return nil, err
	}

	log.Infow("database connection established", "driver", dialect.DriverName())
	return &DB{conn: conn, dialect: dialect, log: log, debug: cfg.Debug}, nil
}

// Migrate creates the collections and entries tables when missing.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range db.dialect.schemaStatements() {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	db.log.Infow("database schema ready", "driver", db.dialect.DriverName())
	return nil
}

func (db *DB) Dialect() Dialect { return db.dialect }

func (db *DB) Count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func (db *DB) QueryRows(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.prepare(query, args), args...)
}

func (db *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.prepare(query, args), args...)
}

func (db *DB) Insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, db.classify(err)
	}
	return id, nil
}

func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := db.conn.ExecContext(ctx, db.prepare(query, args), args...)
	if err != nil {
		return 0, db.classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) prepare(query string, args []interface{}) string {
	query = db.dialect.Rebind(query)
	if db.debug {
		db.log.Debugw("sql", "query", strings.Join(strings.Fields(query), " "), "args", len(args))
	}
	return query
}

// classify turns storage-level unique violations into ErrUniqueViolation so
// stores can report them as conflicts.
func (db *DB) classify(err error) error {
	if db.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
	}
	return err
}
