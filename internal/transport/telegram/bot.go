package telegram

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/internal/service/documents"
	"github.com/sandevgo/ragchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"

	// Bot API refuses to hand out files above this size
	maxDocumentBytes = 20 << 20
)

type Assistant interface {
	Ask(ctx context.Context, conv *core.Conversation, message string) (core.ChatResponse, error)
	Upload(ctx context.Context, conv *core.Conversation, file core.UploadFile) (core.UploadAck, error)
}

type Bot struct {
	bot       *tele.Bot
	sender    *sender
	assistant Assistant
	router    core.CmdRouter
	formatter *command.ResponseFormatter
	ownerID   int64

	defaults core.Conversation
	mu       sync.Mutex
	convs    map[int64]*core.Conversation
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	appCfg *config.AppConfig,
	assistant Assistant,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := newBot(assistant, router, cfg.OwnerID, core.Conversation{
		Namespace: appCfg.GetNamespace(),
		UserID:    appCfg.GetUserID(),
	})
	bot.bot = b
	bot.sender = newSender(b)

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)
	b.Handle(tele.OnDocument, bot.handleDocument)

	return bot, nil
}

func newBot(assistant Assistant, router core.CmdRouter, ownerID int64, defaults core.Conversation) *Bot {
	return &Bot{
		assistant: assistant,
		router:    router,
		formatter: command.NewResponseFormatter(),
		ownerID:   ownerID,
		defaults:  defaults,
		convs:     make(map[int64]*core.Conversation),
	}
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

// conversation returns a copy of the chat's conversation, creating it from
// defaults. Handlers run concurrently, so edits go back through commit or
// settleSession.
func (b *Bot) conversation(chatID int64) core.Conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.lookup(chatID)
}

func (b *Bot) lookup(chatID int64) *core.Conversation {
	conv, ok := b.convs[chatID]
	if !ok {
		c := b.defaults
		conv = &c
		b.convs[chatID] = conv
	}
	return conv
}

// execute runs a slash command against the chat's conversation under the lock.
func (b *Bot) execute(ctx context.Context, chatID int64, text string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Execute(ctx, b.lookup(chatID), text)
}

// settleSession records the session an answer came back in, unless the chat
// moved to another namespace or session while the request was running.
func (b *Bot) settleSession(chatID int64, sent core.Conversation, sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	conv := b.lookup(chatID)
	if conv.Namespace != sent.Namespace || conv.SessionID != sent.SessionID {
		return
	}
	conv.SessionID = sessionID
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	reply := b.reply(ctx, c.Chat().ID, c.Text())
	return b.sender.sendMarkdown(ctx, c.Chat(), reply, false)
}

func (b *Bot) handleDocument(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	doc := c.Message().Document
	if doc == nil {
		return nil
	}
	if doc.FileSize > maxDocumentBytes {
		return b.sender.sendMarkdown(ctx, c.Chat(), b.formatter.Error("Upload", fmt.Errorf("%s is larger than 20 MB", doc.FileName)), false)
	}

	_ = c.Notify(tele.UploadingDocument)

	rc, err := b.bot.File(&doc.File)
	if err != nil {
		logger.Error().Err(err).Str("file", doc.FileName).Msg("failed to download telegram document")
		return b.sender.sendMarkdown(ctx, c.Chat(), b.formatter.Error("Download", err), false)
	}
	defer rc.Close()

	reply := b.upload(ctx, c.Chat().ID, doc.FileName, doc.MIME, rc)
	return b.sender.sendMarkdown(ctx, c.Chat(), reply, false)
}

// reply produces the markdown answer to a text message.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) string {
	text = strings.TrimSpace(text)

	if out, handled := b.execute(ctx, chatID, text); handled {
		return out
	}

	sent := b.conversation(chatID)
	conv := sent
	resp, err := b.assistant.Ask(ctx, &conv, text)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("chat request failed")
		return b.formatter.Failure(err)
	}
	b.settleSession(chatID, sent, conv.SessionID)
	return b.formatter.Answer(resp)
}

func (b *Bot) upload(ctx context.Context, chatID int64, name, mime string, r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return b.formatter.Error("Download", err)
	}
	if len(data) > maxDocumentBytes {
		return b.formatter.Error("Upload", fmt.Errorf("%s is larger than 20 MB", name))
	}

	file := documents.NewUploadFile(name, data)
	if mime != "" {
		file.ContentType = mime
	}

	conv := b.conversation(chatID)
	ack, err := b.assistant.Upload(ctx, &conv, file)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("file", name).Msg("upload failed")
		return b.formatter.Failure(err)
	}
	return b.formatter.UploadNotice(name, ack)
}
