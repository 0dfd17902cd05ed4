package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/service/assistant"
	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/internal/service/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	asked    []core.Conversation
	resp     core.ChatResponse
	err      error
	uploaded []core.UploadFile
}

func (f *fakeAssistant) Ask(ctx context.Context, conv *core.Conversation, message string) (core.ChatResponse, error) {
	f.asked = append(f.asked, *conv)
	if f.err != nil {
		return core.ChatResponse{}, f.err
	}
	conv.SessionID = f.resp.SessionID
	return f.resp, nil
}

func (f *fakeAssistant) Upload(ctx context.Context, conv *core.Conversation, file core.UploadFile) (core.UploadAck, error) {
	f.uploaded = append(f.uploaded, file)
	return core.UploadAck{DocumentID: "d1"}, f.err
}

func newTestBot(a *fakeAssistant) *Bot {
	router := command.New([]core.Command{command.NewNewSessionCommand(), command.NewNamespaceCommand()})
	return newBot(a, router, 1, core.Conversation{Namespace: "default", UserID: "u1"})
}

func TestBot_ReplyAnswersWithSources(t *testing.T) {
	a := &fakeAssistant{resp: core.ChatResponse{
		SessionID: "s1",
		Answer:    "The lease ends in **May**.",
		Sources:   []core.Source{{DocumentID: "lease.pdf", ChunkID: "4"}},
	}}
	b := newTestBot(a)

	out := b.reply(context.Background(), 10, "when does the lease end?")
	assert.Contains(t, out, "The lease ends in **May**.")
	assert.Contains(t, out, "`lease.pdf` #4")

	// the second turn continues the server session of this chat only
	b.reply(context.Background(), 10, "and the deposit?")
	b.reply(context.Background(), 20, "hello")
	require.Len(t, a.asked, 3)
	assert.Empty(t, a.asked[0].SessionID)
	assert.Equal(t, "s1", a.asked[1].SessionID)
	assert.Empty(t, a.asked[2].SessionID)
	assert.Equal(t, "default", a.asked[2].Namespace)
}

func TestBot_ReplyRoutesCommands(t *testing.T) {
	a := &fakeAssistant{}
	b := newTestBot(a)

	out := b.reply(context.Background(), 10, "/namespace legal")
	assert.Contains(t, out, "legal")
	assert.Empty(t, a.asked)
	assert.Equal(t, "legal", b.conversation(10).Namespace)
	assert.Equal(t, "default", b.conversation(20).Namespace)
}

// heldChat answers each message only after release is closed.
type heldChat struct {
	started chan core.ChatRequest
	release chan struct{}
}

func (h *heldChat) SendMessage(ctx context.Context, req core.ChatRequest) (core.ChatResponse, error) {
	h.started <- req
	<-h.release
	return core.ChatResponse{SessionID: req.SessionID, Answer: "late answer"}, nil
}

func TestBot_CommandDuringPendingAskWins(t *testing.T) {
	chat := &heldChat{started: make(chan core.ChatRequest, 1), release: make(chan struct{})}
	orch := orchestrator.New(chat, nil)
	router := command.New([]core.Command{command.NewNewSessionCommand(), command.NewNamespaceCommand()})
	b := newBot(assistant.New(orch, nil), router, 1, core.Conversation{Namespace: "legal", SessionID: "old-session"})

	answered := make(chan string, 1)
	go func() {
		answered <- b.reply(context.Background(), 10, "still there?")
	}()
	req := <-chat.started
	assert.Equal(t, "old-session", req.SessionID)

	out := b.reply(context.Background(), 10, "/namespace docs")
	assert.Contains(t, out, "docs")

	busy := b.reply(context.Background(), 10, "another question")
	assert.Contains(t, busy, "still running")

	close(chat.release)
	assert.Contains(t, <-answered, "late answer")

	conv := b.conversation(10)
	assert.Equal(t, "docs", conv.Namespace)
	assert.NotEqual(t, "old-session", conv.SessionID)
	assert.Empty(t, conv.SessionID)
}

func TestBot_ReplyShowsFailure(t *testing.T) {
	b := newTestBot(&fakeAssistant{err: &core.StatusError{Kind: core.KindAuth, Status: 401}})
	out := b.reply(context.Background(), 10, "hi")
	assert.Contains(t, out, "ragchat login")
}

func TestBot_Upload(t *testing.T) {
	a := &fakeAssistant{}
	b := newTestBot(a)

	out := b.upload(context.Background(), 10, "memo.txt", "", strings.NewReader("quarterly memo"))
	assert.Contains(t, out, "Document uploaded. Indexing in progress.")
	require.Len(t, a.uploaded, 1)
	assert.Equal(t, "memo.txt", a.uploaded[0].Name)
	assert.Equal(t, "text/plain", a.uploaded[0].ContentType)

	b.upload(context.Background(), 10, "scan.pdf", "application/pdf", strings.NewReader("not really a pdf"))
	require.Len(t, a.uploaded, 2)
	assert.Equal(t, "application/pdf", a.uploaded[1].ContentType)
}

func TestSplitHTML(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitHTML("short", 10))

	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	chunks := splitHTML(text, 10)
	assert.Equal(t, []string{strings.Repeat("a", 8), strings.Repeat("b", 8)}, chunks)

	long := strings.Repeat("x", 25)
	chunks = splitHTML(long, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Deposit: 2 months & fees", plainText("<strong>Deposit</strong>: 2 months &amp; fees"))
}
