package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps all records in process memory. The shortID map is the
// uniqueness constraint: Insert checks and writes under the same lock, so a
// race between two allocators is resolved here, not by the caller.
type MemoryStorage struct {
	mu      sync.RWMutex
	byShort map[string]ShortLink
	clicks  []Click
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byShort: make(map[string]ShortLink),
	}, nil
}

func (m *MemoryStorage) FindByShort(ctx context.Context, shortID string) (*ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, exists := m.byShort[shortID]; exists {
		return &r, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) FindByOriginal(ctx context.Context, original string, ownerID string) (*ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.byShort {
		if r.Original == original && r.OwnerID == ownerID {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) Insert(ctx context.Context, record ShortLink) (*ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byShort[record.ShortID]; exists {
		return nil, ErrShortIDTaken
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	m.byShort[record.ShortID] = record
	return &record, nil
}

func (m *MemoryStorage) InsertClick(ctx context.Context, click Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if click.ID == "" {
		click.ID = uuid.New().String()
	}
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now()
	}

	m.clicks = append(m.clicks, click)
	return nil
}

// Clicks returns a copy of every recorded click.
func (m *MemoryStorage) Clicks() []Click {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Click, len(m.clicks))
	copy(out, m.clicks)
	return out
}

// PingContext reports healthy: an in-process store is always reachable.
func (m *MemoryStorage) PingContext(ctx context.Context) error {
	return nil
}
