package core

import (
	"context"
	"time"
)

type HistoryRepository interface {
	AddTurn(ctx context.Context, namespace, sessionID string, msgs ...ChatMessage) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)
	LastSession(ctx context.Context, namespace string) (string, error)
	ListSessions(ctx context.Context, namespace string, limit int) ([]StoredSession, error)
}

type CredentialRepository interface {
	SaveCredential(ctx context.Context, baseURL string, cred Credential) error
	LoadCredential(ctx context.Context, baseURL string) (Credential, bool, error)
	DeleteCredential(ctx context.Context, baseURL string) error
}

type StoredSession struct {
	SessionID string    `json:"session_id"`
	Namespace string    `json:"namespace"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
