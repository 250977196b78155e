package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/sitewizard/sitewizard/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

// Store persists wizard sessions plus a pointer to the current one.
// Writes are read-modify-write of the whole session; concurrent writers on
// the same session get last-write-wins.
type Store interface {
	Create(ctx context.Context, initial *models.Session) (string, error)
	Read(ctx context.Context, id string) (*models.Session, error)
	Write(ctx context.Context, id string, patch models.Patch) (*models.Session, error)
	ClearAll(ctx context.Context) error
	Current(ctx context.Context) (string, bool, error)
	SetCurrent(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.SessionSummary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ImageStore keeps image bytes out of the serialized session state
type ImageStore interface {
	PutImage(ctx context.Context, data []byte, contentType string) (string, error)
	GetImage(ctx context.Context, id string) ([]byte, string, error)
}

// Backend is a session store that also holds image blobs
type Backend interface {
	Store
	ImageStore
}

// Open returns the backend named by driver ("sqlite" or "memory")
func Open(driver, path string) (Backend, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

func newSessionID() string {
	return uuid.NewString()
}

// decodeSession parses stored session JSON. Absent or corrupt data yields an
// empty session rather than an error.
func decodeSession(id string, data []byte) *models.Session {
	if len(data) == 0 {
		return models.Empty(id)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		slog.Warn("Discarding corrupt session data", "session_id", id, "err", err)
		return models.Empty(id)
	}
	session.ID = id
	return &session
}

func sortSummaries(summaries []models.SessionSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
}
