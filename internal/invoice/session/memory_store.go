package session

import (
	"context"
	"sync"
	"time"

	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
)

type memoryEntry struct {
	session   *invoicedomain.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Entries expire ttl after their
// last save.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*invoicedomain.Session, error) {
	_ = ctx
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, invoicedomain.ErrSessionNotFound
	}
	if m.ttl > 0 && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, invoicedomain.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *invoicedomain.Session) error {
	_ = ctx
	if s == nil || s.ID == "" {
		return invoicedomain.ErrInvalidSessionID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = memoryEntry{
		session:   s.Clone(),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return invoicedomain.ErrSessionNotFound
	}
	delete(m.entries, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}
