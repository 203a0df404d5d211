// Package repository provides SQL-backed implementations of the link store
// contract. The short_id UNIQUE constraint is the authoritative guard against
// concurrent allocation: a losing insert surfaces as storage.ErrShortIDTaken
// and the allocator retries.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/storage"
)

const pgSchema = `
	CREATE TABLE IF NOT EXISTS short_links (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		original_url TEXT NOT NULL,
		short_id TEXT UNIQUE NOT NULL,
		length INT NOT NULL,
		owner_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS clicks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		short_link_id UUID NOT NULL REFERENCES short_links(id),
		ip TEXT NOT NULL,
		user_agent TEXT NOT NULL,
		user_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

// InitDB opens a Postgres connection and creates the schema.
func InitDB(dsn string, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal("cannot open database", zap.Error(err))
	}

	if err := db.Ping(); err != nil {
		logger.Fatal("cannot reach database", zap.Error(err))
	}

	if _, err := db.Exec(pgSchema); err != nil {
		logger.Fatal("cannot create schema", zap.Error(err))
	}

	return db
}

// LinkRepository implements the link store contract on Postgres.
type LinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateLinkRepository(db *sql.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LinkRepository) FindByShort(ctx context.Context, shortID string) (*storage.ShortLink, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, original_url, short_id, length, owner_id, created_at FROM short_links WHERE short_id = $1;",
		shortID,
	)
	return scanShortLink(row)
}

func (r *LinkRepository) FindByOriginal(ctx context.Context, original string, ownerID string) (*storage.ShortLink, error) {
	// IS NOT DISTINCT FROM makes NULL (anonymous) match only NULL.
	row := r.db.QueryRowContext(ctx,
		"SELECT id, original_url, short_id, length, owner_id, created_at FROM short_links WHERE original_url = $1 AND owner_id IS NOT DISTINCT FROM $2;",
		original, nullableOwner(ownerID),
	)
	return scanShortLink(row)
}

func (r *LinkRepository) Insert(ctx context.Context, record storage.ShortLink) (*storage.ShortLink, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO short_links(original_url, short_id, length, owner_id) VALUES ($1, $2, $3, $4) RETURNING id, original_url, short_id, length, owner_id, created_at;",
		record.Original, record.ShortID, record.Length, nullableOwner(record.OwnerID),
	)

	inserted, err := scanShortLink(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, storage.ErrShortIDTaken
		}
		r.logger.Error("insert failed", zap.Error(err))
		return nil, err
	}

	return inserted, nil
}

func (r *LinkRepository) InsertClick(ctx context.Context, click storage.Click) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO clicks(short_link_id, ip, user_agent, user_id) VALUES ($1, $2, $3, $4);",
		click.ShortLinkID, click.IP, click.UserAgent, nullableOwner(click.UserID),
	)
	return err
}

func (r *LinkRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShortLink(row rowScanner) (*storage.ShortLink, error) {
	var record storage.ShortLink
	var owner sql.NullString

	err := row.Scan(&record.ID, &record.Original, &record.ShortID, &record.Length, &owner, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record.OwnerID = owner.String
	return &record, nil
}

func nullableOwner(ownerID string) sql.NullString {
	return sql.NullString{String: ownerID, Valid: ownerID != ""}
}
