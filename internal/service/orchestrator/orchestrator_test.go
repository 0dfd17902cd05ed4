package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/providers/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	resp core.ChatResponse
	err  error
}

// gatedChat blocks every SendMessage until a result is pushed to release.
type gatedChat struct {
	started chan core.ChatRequest
	release chan result
	mu      sync.Mutex
	calls   int
}

func newGatedChat() *gatedChat {
	return &gatedChat{
		started: make(chan core.ChatRequest, 4),
		release: make(chan result, 4),
	}
}

func (g *gatedChat) SendMessage(ctx context.Context, req core.ChatRequest) (core.ChatResponse, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	g.started <- req
	r := <-g.release
	return r.resp, r.err
}

func (g *gatedChat) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeUploader struct {
	ack   core.UploadAck
	err   error
	gate  chan struct{}
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, req core.UploadRequest) (core.UploadAck, error) {
	f.calls++
	if f.gate != nil {
		<-f.gate
	}
	return f.ack, f.err
}

type panickingChat struct{}

func (panickingChat) SendMessage(ctx context.Context, req core.ChatRequest) (core.ChatResponse, error) {
	panic("client bug")
}

func runChatAsync(o *Orchestrator, msg, sessionID string) <-chan result {
	done := make(chan result, 1)
	go func() {
		resp, err := o.RunChat(context.Background(), msg, "default", sessionID)
		done <- result{resp, err}
	}()
	return done
}

func TestRunChat_RejectsConcurrentCall(t *testing.T) {
	chat := newGatedChat()
	o := New(chat, &fakeUploader{})

	first := runChatAsync(o, "hi", "")
	<-chat.started
	assert.True(t, o.State(core.SlotChat).Pending)

	_, err := o.RunChat(context.Background(), "again", "default", "")
	require.ErrorIs(t, err, core.ErrConcurrentRequest)
	assert.Equal(t, core.KindConcurrent, core.KindOf(err))
	assert.Equal(t, 1, chat.callCount())

	chat.release <- result{resp: core.ChatResponse{SessionID: "s1", Answer: "hello"}}
	r := <-first
	require.NoError(t, r.err)
	assert.Equal(t, "hello", r.resp.Answer)

	// the slot is reusable once settled
	third := runChatAsync(o, "more", "s1")
	req := <-chat.started
	assert.Equal(t, "s1", req.SessionID)
	chat.release <- result{resp: core.ChatResponse{SessionID: "s1", Answer: "again"}}
	require.NoError(t, (<-third).err)
	assert.Equal(t, 2, chat.callCount())
}

func TestState_ReturnsIndependentCopy(t *testing.T) {
	chat := newGatedChat()
	o := New(chat, &fakeUploader{})

	sources := []core.Source{{DocumentID: "doc-1", ChunkID: "c1"}}
	chat.release <- result{resp: core.ChatResponse{SessionID: "s1", Answer: "ok", Sources: sources}}
	resp, err := o.RunChat(context.Background(), "hi", "default", "")
	require.NoError(t, err)
	resp.Sources[0].DocumentID = "changed"

	st := o.State(core.SlotChat)
	require.NotNil(t, st.LastResult)
	st.LastResult.Sources[0].ChunkID = "changed"

	again := o.State(core.SlotChat)
	require.Len(t, again.LastResult.Sources, 1)
	assert.Equal(t, core.Source{DocumentID: "doc-1", ChunkID: "c1"}, again.LastResult.Sources[0])
}

func TestRunChat_SlotReusableAfterFailure(t *testing.T) {
	chat := newGatedChat()
	o := New(chat, &fakeUploader{})

	chat.release <- result{err: &core.StatusError{Kind: core.KindChat, Status: 500}}
	_, err := o.RunChat(context.Background(), "hi", "default", "")
	require.ErrorIs(t, err, core.ErrChat)
	<-chat.started

	chat.release <- result{resp: core.ChatResponse{SessionID: "s1", Answer: "ok"}}
	resp, err := o.RunChat(context.Background(), "hi", "default", "")
	require.NoError(t, err)
	<-chat.started
	assert.Equal(t, "ok", resp.Answer)

	st := o.State(core.SlotChat)
	assert.False(t, st.Pending)
	assert.NoError(t, st.LastError)
}

func TestRunChat_FailureKeepsLastResult(t *testing.T) {
	chat := newGatedChat()
	o := New(chat, &fakeUploader{})

	chat.release <- result{resp: core.ChatResponse{SessionID: "s1", Answer: "first"}}
	_, err := o.RunChat(context.Background(), "hi", "default", "")
	require.NoError(t, err)

	chat.release <- result{err: fmt.Errorf("POST /v1/chat: %w", core.ErrNetwork)}
	_, err = o.RunChat(context.Background(), "more", "default", "s1")
	require.ErrorIs(t, err, core.ErrNetwork)

	st := o.State(core.SlotChat)
	assert.False(t, st.Pending)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, "first", st.LastResult.Answer)
	assert.Equal(t, core.KindNetwork, core.KindOf(st.LastError))
}

func TestRunChat_TimeoutLeavesSlotIdle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := &config.ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}
	clients := backend.NewClients(context.Background(), cfg, nil)

	o := New(clients.Chat, clients.Upload)
	_, err := o.RunChat(context.Background(), "hi", "default", "")
	require.ErrorIs(t, err, core.ErrTimeout)

	st := o.State(core.SlotChat)
	assert.False(t, st.Pending)
	assert.ErrorIs(t, st.LastError, core.ErrTimeout)
}

func TestRunChat_PanicClearsPending(t *testing.T) {
	o := New(panickingChat{}, &fakeUploader{})

	assert.Panics(t, func() {
		_, _ = o.RunChat(context.Background(), "hi", "default", "")
	})

	st := o.State(core.SlotChat)
	assert.False(t, st.Pending)
	assert.Error(t, st.LastError)
}

func TestSlotsAreIndependent(t *testing.T) {
	chat := newGatedChat()
	up := &fakeUploader{ack: core.UploadAck{DocumentID: "d1", Status: "processing"}}
	o := New(chat, up)

	first := runChatAsync(o, "hi", "")
	<-chat.started

	ack, err := o.RunUpload(context.Background(), core.UploadFile{Name: "a.txt", Data: []byte("x")}, "default", "u1")
	require.NoError(t, err)
	assert.Equal(t, "d1", ack.DocumentID)
	assert.True(t, o.State(core.SlotChat).Pending)
	assert.False(t, o.State(core.SlotUpload).Pending)

	chat.release <- result{resp: core.ChatResponse{Answer: "ok"}}
	require.NoError(t, (<-first).err)
}

func TestRunUpload_RejectsConcurrentCall(t *testing.T) {
	up := &fakeUploader{gate: make(chan struct{})}
	o := New(newGatedChat(), up)

	busy := make(chan struct{})
	o.Subscribe(func(slot core.Slot, st core.RequestState) {
		if slot == core.SlotUpload && st.Pending {
			close(busy)
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := o.RunUpload(context.Background(), core.UploadFile{Data: []byte("x")}, "default", "u1")
		done <- err
	}()
	<-busy

	_, err := o.RunUpload(context.Background(), core.UploadFile{Data: []byte("y")}, "default", "u1")
	require.ErrorIs(t, err, core.ErrConcurrentRequest)

	close(up.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, up.calls)
}

func TestRunUpload_EmptyFileFailsBeforeNetwork(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer srv.Close()

	clients := backend.NewClients(context.Background(), &config.ClientConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)

	o := New(clients.Chat, clients.Upload)
	_, err := o.RunUpload(context.Background(), core.UploadFile{Name: "empty.pdf"}, "default", config.DefaultUserID)
	require.ErrorIs(t, err, core.ErrValidation)

	mu.Lock()
	assert.Zero(t, hits)
	mu.Unlock()

	st := o.State(core.SlotUpload)
	assert.False(t, st.Pending)
	assert.Equal(t, core.KindValidation, core.KindOf(st.LastError))
}

func TestRunUpload_HookOnlyOnAck(t *testing.T) {
	up := &fakeUploader{ack: core.UploadAck{DocumentID: "d1"}}
	o := New(newGatedChat(), up)

	var events []UploadAcknowledged
	o.OnUploadAcknowledged(func(ctx context.Context, ev UploadAcknowledged) {
		events = append(events, ev)
	})

	_, err := o.RunUpload(context.Background(), core.UploadFile{Name: "a.md", Data: []byte("# a")}, "docs", "u1")
	require.NoError(t, err)

	up.err = &core.StatusError{Kind: core.KindUpload, Status: 413}
	_, err = o.RunUpload(context.Background(), core.UploadFile{Name: "b.md", Data: []byte("# b")}, "docs", "u1")
	require.ErrorIs(t, err, core.ErrUpload)

	require.Len(t, events, 1)
	assert.Equal(t, "a.md", events[0].FileName)
	assert.Equal(t, "docs", events[0].Namespace)
	assert.Equal(t, "d1", events[0].Ack.DocumentID)

	st := o.State(core.SlotUpload)
	require.NotNil(t, st.LastAck)
	assert.Equal(t, "d1", st.LastAck.DocumentID)
	assert.True(t, errors.Is(st.LastError, core.ErrUpload))
}

func TestSubscribe_SeesTransitions(t *testing.T) {
	chat := newGatedChat()
	o := New(chat, &fakeUploader{})

	var seen []bool
	unsubscribe := o.Subscribe(func(slot core.Slot, st core.RequestState) {
		if slot == core.SlotChat {
			seen = append(seen, st.Pending)
		}
	})

	chat.release <- result{resp: core.ChatResponse{Answer: "ok"}}
	_, err := o.RunChat(context.Background(), "hi", "default", "")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, seen)

	unsubscribe()
	chat.release <- result{resp: core.ChatResponse{Answer: "ok"}}
	_, err = o.RunChat(context.Background(), "hi", "default", "")
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestState_UnusedSlotIsIdle(t *testing.T) {
	o := New(newGatedChat(), &fakeUploader{})
	st := o.State(core.SlotUpload)
	assert.False(t, st.Pending)
	assert.Nil(t, st.LastAck)
	assert.NoError(t, st.LastError)
}
