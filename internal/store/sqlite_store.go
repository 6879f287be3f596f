package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/vidmux/internal/persistence/sqlite"
)

const schemaVersion = 1

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens (and migrates) the database at dbPath.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := &SqliteStore{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("download store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) migrate() error {
	current, err := sqlite.UserVersion(s.DB)
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		video_format_id TEXT NOT NULL DEFAULT '',
		audio_format_id TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		filename TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		created_at_ms INTEGER NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_downloads_updated ON downloads(updated_at_ms);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SqliteStore) Put(ctx context.Context, rec Record) error {
	query := `
	INSERT INTO downloads (id, url, video_format_id, audio_format_id, state, attempts, filename, last_error, created_at_ms, updated_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		video_format_id = excluded.video_format_id,
		audio_format_id = excluded.audio_format_id,
		state = excluded.state,
		attempts = excluded.attempts,
		filename = excluded.filename,
		last_error = excluded.last_error,
		updated_at_ms = excluded.updated_at_ms
	`
	_, err := s.DB.ExecContext(ctx, query,
		rec.ID, rec.URL, rec.VideoFormatID, rec.AudioFormatID, string(rec.State), rec.Attempts,
		rec.Filename, rec.LastError, rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put download %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, url, video_format_id, audio_format_id, state, attempts, filename, last_error, created_at_ms, updated_at_ms FROM downloads`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var state string
	var created, updated int64
	err := row.Scan(&rec.ID, &rec.URL, &rec.VideoFormatID, &rec.AudioFormatID, &state, &rec.Attempts,
		&rec.Filename, &rec.LastError, &created, &updated)
	if err != nil {
		return Record{}, err
	}
	rec.State = State(state)
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

func (s *SqliteStore) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get download %s: %w", id, err)
	}
	return rec, nil
}

func (s *SqliteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.DB.QueryContext(ctx, selectColumns+` ORDER BY updated_at_ms DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SqliteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM downloads WHERE state IN (?, ?) AND updated_at_ms < ?`,
		string(StateSucceeded), string(StateFailed), cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete old downloads: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Ping also runs a quick integrity check.
func (s *SqliteStore) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return err
	}
	issues, err := sqlite.QuickCheck(ctx, s.DB)
	if err != nil {
		return err
	}
	if issues != nil {
		return fmt.Errorf("download store integrity: %v", issues)
	}
	return nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
