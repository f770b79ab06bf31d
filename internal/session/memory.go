package session

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/cart"

	"github.com/google/uuid"
)

type memEntry struct {
	mu        sync.Mutex
	sess      *Session
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore: при ttl <= 0 сессии не истекают
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) deadline() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func (m *MemoryStore) expired(e *memEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

func (m *MemoryStore) Create(_ context.Context, recipientID string) (*Session, error) {
	s := &Session{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Cart:        cart.New(),
		CreatedAt:   m.now().UTC(),
	}
	m.mu.Lock()
	m.entries[s.ID] = &memEntry{sess: s, expiresAt: m.deadline()}
	m.mu.Unlock()
	return s.clone(), nil
}

func (m *MemoryStore) entry(id string) (*memEntry, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || m.expired(e) {
		return nil, ErrNotFound
	}
	return e.sess.clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (*Session, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || m.expired(e) {
		return nil, ErrNotFound
	}

	next := e.sess.clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.sess = next
	e.expiresAt = m.deadline()
	return next.clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	// Update, ожидающий на e.mu, увидит nil и вернёт ErrNotFound
	e.mu.Lock()
	e.sess = nil
	e.mu.Unlock()
	return nil
}

// Sweep удаляет истёкшие сессии, возвращает их количество.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		e.mu.Lock()
		if m.expired(e) {
			delete(m.entries, id)
			e.sess = nil
			n++
		}
		e.mu.Unlock()
	}
	return n
}

type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memLock
	seq   uint64
	clock func() time.Time
}

type memLock struct {
	token     uint64
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memLock), clock: time.Now}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if cur, ok := l.held[key]; ok && (cur.expiresAt.IsZero() || now.Before(cur.expiresAt)) {
		return nil, ErrLocked
	}
	l.seq++
	token := l.seq
	lk := memLock{token: token}
	if ttl > 0 {
		lk.expiresAt = now.Add(ttl)
	}
	l.held[key] = lk

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
	}, nil
}
