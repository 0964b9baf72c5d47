package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	userID    int
	expiresAt time.Time
}

// MemoryRegistry is an in-process Registry. Expiry is checked lazily at
// resolve time; expired entries are dropped on sight.
type MemoryRegistry struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryRegistry returns a registry issuing tokens valid for ttl.
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (r *MemoryRegistry) Create(_ context.Context, userID int) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = memoryEntry{
		userID:    userID,
		expiresAt: r.now().Add(r.ttl),
	}
	return token, nil
}

func (r *MemoryRegistry) Resolve(_ context.Context, token string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[token]
	if !ok {
		return 0, ErrNoSession
	}
	if r.now().After(entry.expiresAt) {
		delete(r.sessions, token)
		return 0, ErrNoSession
	}
	return entry.userID, nil
}

func (r *MemoryRegistry) Destroy(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}
