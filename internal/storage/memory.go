package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/utils"
)

type blob struct {
	data        []byte
	contentType string
}

// MemoryStore keeps serialized sessions in a map, mirroring how the wizard
// state lives in browser storage: every read decodes a fresh copy.
type MemoryStore struct {
	sessions map[string][]byte
	images   map[string]blob
	current  string
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		images:   make(map[string]blob),
	}
}

func (s *MemoryStore) Create(ctx context.Context, initial *models.Session) (string, error) {
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
	s.sessions[id] = data
	s.current = id
	return id, nil
}

func (s *MemoryStore) Read(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeSession(id, s.sessions[id]), nil
}

func (s *MemoryStore) Write(ctx context.Context, id string, patch models.Patch) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := decodeSession(id, s.sessions[id])
	patch.Apply(session)
	session.UpdatedAt = time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	s.sessions[id] = data
	return session, nil
}

func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string][]byte)
	s.current = ""
	return nil
}

func (s *MemoryStore) Current(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != "", nil
}

func (s *MemoryStore) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]models.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.SessionSummary, 0, len(s.sessions))
	for id, data := range s.sessions {
		summary := decodeSession(id, data).Summary()
		summary.Current = id == s.current
		summaries = append(summaries, summary)
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	if s.current == id {
		s.current = ""
	}
	return nil
}

func (s *MemoryStore) PutImage(ctx context.Context, data []byte, contentType string) (string, error) {
	id := utils.CalculateDataMD5(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = blob{data: append([]byte(nil), data...), contentType: contentType}
	return id, nil
}

func (s *MemoryStore) GetImage(ctx context.Context, id string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.images[id]
	if !ok {
		return nil, "", ErrImageNotFound
	}
	return b.data, b.contentType, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
