package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
)

// Manager is the application side of authentication: it runs the auth calls
// and keeps the Session and the credential store in step.
type Manager struct {
	auth    core.Authenticator
	repo    core.CredentialRepository
	session *Session
	baseURL string
	now     func() time.Time
}

func NewManager(auth core.Authenticator, repo core.CredentialRepository, s *Session, baseURL string) *Manager {
	return &Manager{
		auth:    auth,
		repo:    repo,
		session: s,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Restore loads a stored credential into the session. It reports whether one
// was found.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	cred, ok, err := m.repo.LoadCredential(ctx, m.baseURL)
	if err != nil {
		return false, fmt.Errorf("load credential: %w", err)
	}
	if !ok {
		return false, nil
	}

	m.session.Begin(cred)
	if m.session.Expired(m.now()) {
		log.FromCtx(ctx).Warn().
			Time("expired_at", cred.ExpiresAt()).
			Msg("stored credential has expired, run 'ragchat login' again")
	}
	return true, nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (core.Credential, error) {
	cred, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return core.Credential{}, err
	}

	m.session.Begin(cred)
	if err := m.repo.SaveCredential(ctx, m.baseURL, cred); err != nil {
		return cred, fmt.Errorf("save credential: %w", err)
	}

	log.FromCtx(ctx).Info().Str("email", email).Msg("logged in")
	return cred, nil
}

// Logout ends the session only after the server confirmed it. A failed
// logout leaves the credential in place so the user can retry.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.auth.Logout(ctx); err != nil {
		return err
	}

	m.session.End()
	if err := m.repo.DeleteCredential(ctx, m.baseURL); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (m *Manager) CurrentUser(ctx context.Context) (core.UserProfile, error) {
	return m.auth.CurrentUser(ctx)
}

func (m *Manager) Session() *Session {
	return m.session
}
