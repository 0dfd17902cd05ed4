package test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/ragchat/internal/config"
)

const (
	Email    = "ada@example.com"
	Password = "correct horse"
)

// Upload is one document the fake backend received.
type Upload struct {
	Name      string
	Namespace string
	UserID    string
	Data      []byte
}

// Backend is an in-memory stand-in for the RAG API. It accepts one account,
// threads sessions and records uploads.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	token    string
	sessions map[string][]string
	uploads  []Upload
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{sessions: make(map[string][]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", b.login)
	mux.HandleFunc("POST /v1/auth/logout", b.authorized(b.logout))
	mux.HandleFunc("GET /v1/auth/me", b.authorized(b.me))
	mux.HandleFunc("POST /v1/chat", b.authorized(b.chat))
	mux.HandleFunc("POST /v1/documents/upload", b.authorized(b.upload))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) ClientConfig() *config.ClientConfig {
	return &config.ClientConfig{BaseURL: b.Server.URL, Timeout: 2 * time.Second}
}

func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Turns returns the questions asked in a session, oldest first.
func (b *Backend) Turns(sessionID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sessions[sessionID]...)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}
	if req.Email != Email || req.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
		return
	}

	b.mu.Lock()
	b.token = "tok-" + uuid.NewString()
	token := b.token
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "expires_in": 3600})
}

func (b *Backend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		token := b.token
		b.mu.Unlock()

		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || got != token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		next(w, r)
	}
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.token = ""
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"email": Email, "id": 7})
}

func (b *Backend) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
		Namespace string `json:"namespace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}

	b.mu.Lock()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	b.sessions[sessionID] = append(b.sessions[sessionID], req.Message)
	turn := len(b.sessions[sessionID])
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"answer":     fmt.Sprintf("answer %d in %s: %s", turn, req.Namespace, req.Message),
		"sources":    []map[string]string{{"document_id": "lease.pdf", "chunk_id": "3"}},
	})
}

func (b *Backend) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{
		Name:      header.Filename,
		Namespace: r.URL.Query().Get("namespace"),
		UserID:    r.URL.Query().Get("user_id"),
		Data:      data,
	})
	id := len(b.uploads)
	b.mu.Unlock()

	writeJSON(w, http.StatusAccepted, map[string]any{"document_id": fmt.Sprintf("doc-%d", id), "status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
