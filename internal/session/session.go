package session

import (
	"sync"

	"github.com/spec-kit/staff-console/internal/domain"
)

// Storage keys for the persisted credential.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session holds one operator's credential. It starts empty and only changes
// through Login and Logout; it never expires on its own.
type Session struct {
	mu   sync.RWMutex
	cred domain.Credential
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Restore returns a session already holding cred.
func Restore(cred domain.Credential) *Session {
	s := New()
	s.Login(cred.Token, cred.User)
	return s
}

// Login replaces the held credential.
func (s *Session) Login(token string, user domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = domain.Credential{Token: token, User: cloneUser(user)}
}

// Logout drops the credential.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = domain.Credential{}
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

// User returns a copy of the user blob.
func (s *Session) User() domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.cred.User)
}

// Credential returns a copy of the held credential.
func (s *Session) Credential() domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Credential{Token: s.cred.Token, User: cloneUser(s.cred.User)}
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func cloneUser(u domain.UserProfile) domain.UserProfile {
	if u == nil {
		return nil
	}
	out := make(domain.UserProfile, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}
