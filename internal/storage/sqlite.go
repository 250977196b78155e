package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/utils"
	_ "modernc.org/sqlite"
)

const currentSessionKey = "current_session"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
	id TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	data BLOB NOT NULL,
	created_at DATETIME NOT NULL
);`

// SQLiteStore persists sessions and image blobs in a single SQLite file
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// NewSQLiteStore opens (and if needed creates) the database at path.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		slog.Debug("Failed to set sqlite busy_timeout", "err", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		slog.Debug("Failed to set sqlite journal_mode=WAL", "err", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Debug("Opened session database", "path", path)
	return &SQLiteStore{db: db, dbPath: path}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, initial *models.Session) (string, error) {
	id := newSessionID()
	session := models.Session{}
	if initial != nil {
		session = *initial
	}
	session.ID = id
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	data, err := json.Marshal(&session)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO sessions (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, string(data), now, now,
	); err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	if err := setCurrent(ctx, tx, id); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Read(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeSession(id, data), nil
}

func (s *SQLiteStore) readRaw(ctx context.Context, id string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM sessions WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return []byte(data), nil
}

func (s *SQLiteStore) Write(ctx context.Context, id string, patch models.Patch) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	session := decodeSession(id, raw)
	patch.Apply(session)
	session.UpdatedAt = time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, string(data), session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", currentSessionKey); err != nil {
		return fmt.Errorf("failed to clear current session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Current(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", currentSessionKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read current session: %w", err)
	}
	return id, id != "", nil
}

func (s *SQLiteStore) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setCurrent(ctx, s.db, id)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setCurrent(ctx context.Context, db execer, id string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		currentSessionKey, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set current session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", currentSessionKey).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read current session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, data FROM sessions")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []models.SessionSummary
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		summary := decodeSession(id, []byte(data)).Summary()
		summary.Current = id == current
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ? AND value = ?", currentSessionKey, id); err != nil {
		return fmt.Errorf("failed to clear current session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutImage(ctx context.Context, data []byte, contentType string) (string, error) {
	id := utils.CalculateDataMD5(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO images (id, content_type, data, created_at) VALUES (?, ?, ?, ?)",
		id, contentType, data, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetImage(ctx context.Context, id string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	var contentType string
	err := s.db.QueryRowContext(ctx, "SELECT data, content_type FROM images WHERE id = ?", id).Scan(&data, &contentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, contentType, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
