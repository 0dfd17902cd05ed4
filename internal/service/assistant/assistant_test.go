package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatCall struct {
	message, namespace, sessionID string
}

type fakeOrchestrator struct {
	calls   []chatCall
	resp    core.ChatResponse
	err     error
	uploads []core.UploadRequest
	// during runs while the request is in flight
	during func()
}

func (f *fakeOrchestrator) RunChat(ctx context.Context, message, namespace, sessionID string) (core.ChatResponse, error) {
	f.calls = append(f.calls, chatCall{message, namespace, sessionID})
	if f.during != nil {
		f.during()
	}
	return f.resp, f.err
}

func (f *fakeOrchestrator) RunUpload(ctx context.Context, file core.UploadFile, namespace, userID string) (core.UploadAck, error) {
	f.uploads = append(f.uploads, core.UploadRequest{File: file, Namespace: namespace, UserID: userID})
	return core.UploadAck{DocumentID: "d1"}, nil
}

type turn struct {
	namespace, sessionID string
	msgs                 []core.ChatMessage
}

type memHistory struct {
	turns   []turn
	addErr  error
	last    string
	lastErr error
}

func (m *memHistory) AddTurn(ctx context.Context, namespace, sessionID string, msgs ...core.ChatMessage) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.turns = append(m.turns, turn{namespace, sessionID, msgs})
	return nil
}

func (m *memHistory) GetMessages(ctx context.Context, sessionID string, limit int) ([]core.ChatMessage, error) {
	return nil, nil
}

func (m *memHistory) LastSession(ctx context.Context, namespace string) (string, error) {
	return m.last, m.lastErr
}

func (m *memHistory) ListSessions(ctx context.Context, namespace string, limit int) ([]core.StoredSession, error) {
	return nil, nil
}

func TestAsk_ThreadsSessionAndSavesTurn(t *testing.T) {
	orch := &fakeOrchestrator{resp: core.ChatResponse{
		SessionID: "s1",
		Answer:    "hello",
		Sources:   []core.Source{{DocumentID: "d1", ChunkID: "c1"}},
	}}
	repo := &memHistory{}
	a := New(orch, repo)
	conv := &core.Conversation{Namespace: "default"}

	_, err := a.Ask(context.Background(), conv, "hi")
	require.NoError(t, err)
	assert.Equal(t, "s1", conv.SessionID)

	_, err = a.Ask(context.Background(), conv, "more")
	require.NoError(t, err)

	require.Len(t, orch.calls, 2)
	assert.Equal(t, chatCall{"hi", "default", ""}, orch.calls[0])
	assert.Equal(t, chatCall{"more", "default", "s1"}, orch.calls[1])

	require.Len(t, repo.turns, 2)
	assert.Equal(t, "s1", repo.turns[0].sessionID)
	assert.Equal(t, core.RoleUser, repo.turns[0].msgs[0].Role)
	assert.Equal(t, "hello", repo.turns[0].msgs[1].Content)
	assert.Len(t, repo.turns[0].msgs[1].Sources, 1)
}

func TestAsk_KeepsSelectionChangedDuringRequest(t *testing.T) {
	orch := &fakeOrchestrator{resp: core.ChatResponse{SessionID: "old-session", Answer: "late answer"}}
	repo := &memHistory{}
	a := New(orch, repo)
	conv := &core.Conversation{Namespace: "legal", SessionID: "old-session"}
	orch.during = func() {
		conv.Namespace = "docs"
		conv.SessionID = ""
	}

	resp, err := a.Ask(context.Background(), conv, "still there?")
	require.NoError(t, err)
	assert.Equal(t, "late answer", resp.Answer)
	assert.Equal(t, "docs", conv.Namespace)
	assert.Empty(t, conv.SessionID)

	require.Len(t, repo.turns, 1)
	assert.Equal(t, "legal", repo.turns[0].namespace)
	assert.Equal(t, "old-session", repo.turns[0].sessionID)
}

func TestAsk_FailureKeepsConversation(t *testing.T) {
	orch := &fakeOrchestrator{err: core.ErrTimeout}
	repo := &memHistory{}
	a := New(orch, repo)
	conv := &core.Conversation{Namespace: "default", SessionID: "s1"}

	_, err := a.Ask(context.Background(), conv, "hi")
	require.ErrorIs(t, err, core.ErrTimeout)
	assert.Equal(t, "s1", conv.SessionID)
	assert.Empty(t, repo.turns)
}

func TestAsk_HistoryErrorIsNotFatal(t *testing.T) {
	orch := &fakeOrchestrator{resp: core.ChatResponse{SessionID: "s1", Answer: "ok"}}
	a := New(orch, &memHistory{addErr: errors.New("disk full")})

	resp, err := a.Ask(context.Background(), &core.Conversation{Namespace: "default"}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
}

func TestUpload_UsesConversationScope(t *testing.T) {
	orch := &fakeOrchestrator{}
	a := New(orch, nil)

	_, err := a.Upload(context.Background(), &core.Conversation{Namespace: "legal", UserID: "u1"}, core.UploadFile{Name: "a.txt", Data: []byte("a")})
	require.NoError(t, err)
	require.Len(t, orch.uploads, 1)
	assert.Equal(t, "legal", orch.uploads[0].Namespace)
	assert.Equal(t, "u1", orch.uploads[0].UserID)
}

func TestResume(t *testing.T) {
	a := New(&fakeOrchestrator{}, &memHistory{last: "s7"})
	conv := &core.Conversation{Namespace: "default"}
	ok, err := a.Resume(context.Background(), conv)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s7", conv.SessionID)

	a = New(&fakeOrchestrator{}, &memHistory{})
	conv = &core.Conversation{Namespace: "default"}
	ok, err = a.Resume(context.Background(), conv)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, conv.SessionID)

	ok, err = New(&fakeOrchestrator{}, nil).Resume(context.Background(), conv)
	require.NoError(t, err)
	assert.False(t, ok)
}
