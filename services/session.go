package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MaxSessionIDLength bounds client-supplied session IDs.
const MaxSessionIDLength = 128

type SessionState string

// ValidateSessionID accepts IDs of 1..MaxSessionIDLength characters drawn
// from letters, digits and "._:-".
func ValidateSessionID(id string) error {
	if id == "" || len(id) > MaxSessionIDLength {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidSessionID, MaxSessionIDLength)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == ':', c == '-':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidSessionID, c)
		}
	}
	return nil
}

const (
	StateEmpty      SessionState = "EMPTY"
	StateProcessing SessionState = "PROCESSING"
	StateReady      SessionState = "READY"
)

// Session is an immutable snapshot of one processed document. Chunks and
// Index are always built from the same upload; a new upload replaces the
// whole snapshot.
type Session struct {
	ID        string
	Filename  string
	Chunks    []string
	Index     *VectorIndex
	FileHash  string
	CreatedAt time.Time
}

// SessionStore persists session snapshots by ID.
type SessionStore interface {
	// Get returns ErrSessionNotFound for unknown or expired IDs.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session    *Session
	lastAccess atomic.Int64
}

// MemorySessionStore keeps snapshots in process memory. Idle entries are
// removed by Sweep. With a session limit set, saving a new ID at the limit
// evicts the least recently used session.
type MemorySessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*memoryEntry
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithMaxSessions caps the number of stored sessions. n <= 0 means no cap.
func (m *MemorySessionStore) WithMaxSessions(n int) *MemorySessionStore {
	m.maxSessions = n
	return m
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastAccess.Store(m.now().UnixNano())
	return entry.session, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, s *Session) error {
	entry := &memoryEntry{session: s}
	entry.lastAccess.Store(m.now().UnixNano())

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; !exists && m.maxSessions > 0 {
		for len(m.sessions) >= m.maxSessions {
			m.evictOldestLocked()
		}
	}
	m.sessions[s.ID] = entry
	return nil
}

func (m *MemorySessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   int64
		found    bool
	)
	for id, entry := range m.sessions {
		if at := entry.lastAccess.Load(); !found || at < oldest {
			oldestID, oldest, found = id, at, true
		}
	}
	if found {
		delete(m.sessions, oldestID)
	}
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were
// removed. A TTL <= 0 keeps sessions forever.
func (m *MemorySessionStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, entry := range m.sessions {
		if entry.lastAccess.Load() < cutoff {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
