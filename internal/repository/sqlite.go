package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/skrylnikov/cutly/internal/storage"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS short_links (
		id TEXT PRIMARY KEY,
		original_url TEXT NOT NULL,
		short_id TEXT UNIQUE NOT NULL,
		length INTEGER NOT NULL,
		owner_id TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS clicks (
		id TEXT PRIMARY KEY,
		short_link_id TEXT NOT NULL REFERENCES short_links(id),
		ip TEXT NOT NULL,
		user_agent TEXT NOT NULL,
		user_id TEXT,
		created_at TIMESTAMP NOT NULL
	);`

// InitSQLite opens (or creates) a SQLite database file and creates the schema.
func InitSQLite(path string, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Fatal("cannot open sqlite database", zap.Error(err))
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		logger.Fatal("cannot create sqlite schema", zap.Error(err))
	}

	return db
}

// SQLiteRepository implements the link store contract on SQLite
// (modernc.org/sqlite, no cgo).
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateSQLiteRepository(db *sql.DB, logger *zap.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SQLiteRepository) FindByShort(ctx context.Context, shortID string) (*storage.ShortLink, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, original_url, short_id, length, owner_id, created_at FROM short_links WHERE short_id = ?;",
		shortID,
	)
	return scanShortLink(row)
}

func (r *SQLiteRepository) FindByOriginal(ctx context.Context, original string, ownerID string) (*storage.ShortLink, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, original_url, short_id, length, owner_id, created_at FROM short_links WHERE original_url = ? AND owner_id IS ?;",
		original, nullableOwner(ownerID),
	)
	return scanShortLink(row)
}

func (r *SQLiteRepository) Insert(ctx context.Context, record storage.ShortLink) (*storage.ShortLink, error) {
	record.ID = uuid.New().String()
	record.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO short_links(id, original_url, short_id, length, owner_id, created_at) VALUES (?, ?, ?, ?, ?, ?);",
		record.ID, record.Original, record.ShortID, record.Length, nullableOwner(record.OwnerID), record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrShortIDTaken
		}
		r.logger.Error("sqlite insert failed", zap.Error(err))
		return nil, err
	}

	return &record, nil
}

func (r *SQLiteRepository) InsertClick(ctx context.Context, click storage.Click) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO clicks(id, short_link_id, ip, user_agent, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?);",
		uuid.New().String(), click.ShortLinkID, click.IP, click.UserAgent, nullableOwner(click.UserID), time.Now(),
	)
	return err
}

func (r *SQLiteRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
