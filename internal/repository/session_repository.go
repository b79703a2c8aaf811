package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/staff-console/internal/domain"
)

var (
	// ErrSessionNotFound is returned when no live credential is stored under an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotFound is returned when the remote API answers with no usable record.
	ErrNotFound = errors.New("record not found")
)

// SessionRepository persists operator credentials keyed by console session id.
// Each session stores the token and the user blob under the fixed keys
// "token" and "user".
type SessionRepository interface {
	Save(ctx context.Context, id string, cred domain.Credential, ttl time.Duration) error
	Load(ctx context.Context, id string) (domain.Credential, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	values    map[string]any
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory.
func NewMemorySessionRepository() SessionRepository {
	return newMemorySessionRepository(time.Now)
}

func newMemorySessionRepository(now func() time.Time) *memorySessionRepository {
	return &memorySessionRepository{entries: make(map[string]memoryEntry), now: now}
}

func (r *memorySessionRepository) Save(_ context.Context, id string, cred domain.Credential, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := memoryEntry{values: map[string]any{
		"token": cred.Token,
		"user":  copyProfile(cred.User),
	}}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.entries[id] = entry
	return nil
}

func (r *memorySessionRepository) Load(_ context.Context, id string) (domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || r.expired(entry) {
		delete(r.entries, id)
		return domain.Credential{}, ErrSessionNotFound
	}
	token, _ := entry.values["token"].(string)
	user, _ := entry.values["user"].(domain.UserProfile)
	return domain.Credential{Token: token, User: copyProfile(user)}, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *memorySessionRepository) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, entry := range r.entries {
		if r.expired(entry) {
			delete(r.entries, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memorySessionRepository) Ping(context.Context) error { return nil }

func (r *memorySessionRepository) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt)
}

func copyProfile(u domain.UserProfile) domain.UserProfile {
	if u == nil {
		return nil
	}
	out := make(domain.UserProfile, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}
