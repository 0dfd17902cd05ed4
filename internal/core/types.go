package core

import (
	"encoding/json"
	"time"
)

const (
	AppName      = "RAGChat"
	AppUserAgent = "RAGChat-Client/0.1"
	AppVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. It is never mutated after creation.
type ChatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
}

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Namespace string `json:"namespace"`
}

type ChatResponse struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources,omitempty"`
}

// Source identifies the ingested passage that grounded part of an answer.
type Source struct {
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
}

type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type UploadRequest struct {
	File      UploadFile
	Namespace string
	UserID    string
}

// UploadAck acknowledges receipt of a document. Indexing happens later on the server.
type UploadAck struct {
	DocumentID string          `json:"document_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

type Credential struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	IssuedAt    time.Time `json:"-"`
}

// ExpiresAt is the zero time when the server did not report a lifetime.
func (c Credential) ExpiresAt() time.Time {
	if c.ExpiresIn <= 0 || c.IssuedAt.IsZero() {
		return time.Time{}
	}
	return c.IssuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// UserProfile is opaque to the client; Fields holds whatever the server sent.
type UserProfile struct {
	Fields map[string]any
	Raw    json.RawMessage
}

func (p UserProfile) String(key string) string {
	v, ok := p.Fields[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

type Slot string

const (
	SlotChat   Slot = "chat"
	SlotUpload Slot = "upload"
)

// RequestState is the observable state of one orchestrator slot.
type RequestState struct {
	Pending    bool
	LastResult *ChatResponse
	LastAck    *UploadAck
	LastError  error
}
