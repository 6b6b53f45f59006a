package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"TOSAnalyzer/internal/ports"
)

const summaryTable = "summary_cache"

const schema = `CREATE TABLE IF NOT EXISTS summary_cache (
    doc_hash   TEXT PRIMARY KEY,
    summary    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresCache persists summaries keyed by document hash.
type PostgresCache struct {
	db      *sql.DB
	ttl     time.Duration
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.SummaryCache = (*PostgresCache)(nil)

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresCache wires a sql.DB implementation.
func NewPostgresCache(db *sql.DB, ttl time.Duration) *PostgresCache {
	return &PostgresCache{
		db:      db,
		ttl:     ttl,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:     time.Now,
	}
}

// EnsureSchema creates the cache table when missing.
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", summaryTable, err)
	}
	return nil
}

// Get returns a non-expired summary.
func (c *PostgresCache) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := c.builder.
		Select("summary").
		From(summaryTable).
		Where(sq.Eq{"doc_hash": key}).
		Where(sq.Gt{"expires_at": c.now().UTC()}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var summary string
	err = c.db.QueryRowContext(ctx, query, args...).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select summary: %w", err)
	}

	return summary, true, nil
}

// Put upserts the summary and pushes its expiry forward.
func (c *PostgresCache) Put(ctx context.Context, key, summary string) error {
	query, args, err := c.builder.
		Insert(summaryTable).
		Columns("doc_hash", "summary", "expires_at").
		Values(key, summary, c.now().UTC().Add(c.ttl)).
		Suffix("ON CONFLICT (doc_hash) DO UPDATE SET summary = EXCLUDED.summary, expires_at = EXCLUDED.expires_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// Purge deletes expired rows and reports how many were removed.
func (c *PostgresCache) Purge(ctx context.Context) (int64, error) {
	query, args, err := c.builder.
		Delete(summaryTable).
		Where(sq.LtOrEq{"expires_at": c.now().UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge: %w", err)
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge summaries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return n, nil
}
