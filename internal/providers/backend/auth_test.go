package backend

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_Login(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantMsg  string
		wantCred core.Credential
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"access_token":"tok1","expires_in":3600}`,
			wantCred: core.Credential{AccessToken: "tok1", ExpiresIn: 3600, IssuedAt: issued},
		},
		{
			name:    "bad credentials",
			status:  http.StatusUnauthorized,
			body:    `{"detail":"Invalid email or password"}`,
			wantErr: core.ErrAuth,
			wantMsg: "Invalid email or password",
		},
		{
			name:    "server error is still an auth failure",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: core.ErrAuth,
			wantMsg: "oops",
		},
		{
			name:    "empty token",
			status:  http.StatusOK,
			body:    `{"expires_in":3600}`,
			wantErr: core.ErrAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			client := NewAuthClient(rec.transport(nil))
			client.now = func() time.Time { return issued }

			cred, err := client.Login(context.Background(), "a@b.com", "pw")

			req := rec.last()
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, pathLogin, req.Path)
			assert.JSONEq(t, `{"email":"a@b.com","password":"pw"}`, string(req.Body))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Contains(t, err.Error(), tt.wantMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCred, cred)
			assert.Equal(t, issued.Add(time.Hour), cred.ExpiresAt())
		})
	}
}

func TestAuthClient_Logout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		err := NewAuthClient(rec.transport(staticToken("tok1"))).Logout(context.Background())
		require.NoError(t, err)

		req := rec.last()
		assert.Equal(t, pathLogout, req.Path)
		assert.Equal(t, "Bearer tok1", req.Header.Get("Authorization"))
	})

	t.Run("non-2xx surfaces", func(t *testing.T) {
		rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadGateway, `{"detail":"session store down"}`)
		})

		err := NewAuthClient(rec.transport(staticToken("tok1"))).Logout(context.Background())
		require.ErrorIs(t, err, core.ErrAuth)

		var statusErr *core.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.Status)
	})
}

func TestAuthClient_CurrentUser(t *testing.T) {
	t.Run("no credential fails before sending", func(t *testing.T) {
		rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := NewAuthClient(rec.transport(staticToken(""))).CurrentUser(context.Background())
		require.ErrorIs(t, err, core.ErrAuth)
		assert.Empty(t, rec.all())
	})

	t.Run("expired credential", func(t *testing.T) {
		rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Token expired"}`)
		})

		_, err := NewAuthClient(rec.transport(staticToken("old"))).CurrentUser(context.Background())
		require.ErrorIs(t, err, core.ErrAuth)
		assert.Contains(t, err.Error(), "Token expired")
	})

	t.Run("profile is opaque", func(t *testing.T) {
		rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"id":"u-1","email":"a@b.com","roles":["reader"]}`)
		})

		profile, err := NewAuthClient(rec.transport(staticToken("tok1"))).CurrentUser(context.Background())
		require.NoError(t, err)

		assert.Equal(t, http.MethodGet, rec.last().Method)
		assert.Equal(t, "a@b.com", profile.String("email"))
		assert.Equal(t, "", profile.String("roles"))
		assert.JSONEq(t, `{"id":"u-1","email":"a@b.com","roles":["reader"]}`, string(profile.Raw))
	})
}
