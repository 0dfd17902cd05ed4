package session

import (
	"sync"
	"time"

	"github.com/sandevgo/ragchat/internal/core"
)

// Session owns the credential attached to outgoing requests. It is created by
// the application, handed to the backend Transport as its CredentialSource,
// and scoped by Begin/End.
type Session struct {
	mu     sync.RWMutex
	cred   core.Credential
	active bool
}

var _ core.CredentialSource = (*Session)(nil)

func New() *Session {
	return &Session{}
}

func (s *Session) Begin(cred core.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.active = cred.AccessToken != ""
}

func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = core.Credential{}
	s.active = false
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return ""
	}
	return s.cred.AccessToken
}

func (s *Session) Credential() (core.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.active
}

// Expired reports whether the server-declared lifetime has passed. Nothing
// acts on it automatically; the backend will answer 401 on its own.
func (s *Session) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp := s.cred.ExpiresAt()
	return s.active && !exp.IsZero() && now.After(exp)
}
