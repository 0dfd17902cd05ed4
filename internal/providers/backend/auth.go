package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/ragchat/internal/core"
)

const (
	pathLogin  = "/v1/auth/login"
	pathLogout = "/v1/auth/logout"
	pathMe     = "/v1/auth/me"
)

type AuthClient struct {
	transport *Transport
	now       func() time.Time
}

func NewAuthClient(t *Transport) *AuthClient {
	return &AuthClient{transport: t, now: time.Now}
}

// Login returns the credential for the caller to keep. It is not stored here.
func (a *AuthClient) Login(ctx context.Context, email, password string) (core.Credential, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := a.transport.Send(ctx, http.MethodPost, pathLogin, payload)
	if err != nil {
		return core.Credential{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, core.KindAuth); err != nil {
		return core.Credential{}, fmt.Errorf("login: %w", err)
	}

	var cred core.Credential
	if err := decodeJSON(resp, &cred); err != nil {
		return core.Credential{}, fmt.Errorf("login: %w", err)
	}
	if cred.AccessToken == "" {
		return core.Credential{}, fmt.Errorf("login: %w: empty access_token", core.ErrAuth)
	}
	cred.IssuedAt = a.now()

	return cred, nil
}

func (a *AuthClient) Logout(ctx context.Context) error {
	resp, err := a.transport.Send(ctx, http.MethodPost, pathLogout, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, core.KindAuth); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (a *AuthClient) CurrentUser(ctx context.Context) (core.UserProfile, error) {
	if a.transport.creds == nil || a.transport.creds.Token() == "" {
		return core.UserProfile{}, fmt.Errorf("current user: %w: no credential attached", core.ErrAuth)
	}

	resp, err := a.transport.Send(ctx, http.MethodGet, pathMe, nil)
	if err != nil {
		return core.UserProfile{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, core.KindAuth); err != nil {
		return core.UserProfile{}, fmt.Errorf("current user: %w", err)
	}

	var raw json.RawMessage
	if err := decodeJSON(resp, &raw); err != nil {
		return core.UserProfile{}, fmt.Errorf("current user: %w", err)
	}

	profile := core.UserProfile{Raw: raw}
	// non-object profiles are kept raw only
	_ = json.Unmarshal(raw, &profile.Fields)
	return profile, nil
}
