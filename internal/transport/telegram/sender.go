package telegram

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sandevgo/ragchat/pkg/conv"
	"github.com/sandevgo/ragchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// Telegram caps messages at 4096 characters.
const maxTelegramMsgLen = 4000

var stripPolicy = bluemonday.StrictPolicy()

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown sends an answer as Telegram HTML, split into chunks. A chunk
// Telegram refuses to parse, such as one cut inside a tag, is resent as
// plain text.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, silent bool) error {
	logger := log.FromCtx(ctx)
	body := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if body == "" {
		return nil
	}

	for i, chunk := range splitHTML(body, maxTelegramMsgLen) {
		opts := []any{tele.ModeHTML}
		if silent && i == 0 {
			opts = append(opts, tele.Silent)
		}

		_, err := s.bot.Send(to, chunk, opts...)
		if err == nil {
			continue
		}
		logger.Warn().Err(err).Int("chunk", i).Msg("telegram rejected html chunk, sending plain text")

		if _, err := s.bot.Send(to, plainText(chunk)); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

func plainText(chunk string) string {
	return html.UnescapeString(stripPolicy.Sanitize(chunk))
}

// splitHTML cuts text into chunks of at most maxLen bytes, preferring a
// newline in the latter two thirds of each chunk.
func splitHTML(text string, maxLen int) []string {
	var chunks []string
	for len(text) > maxLen {
		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" || len(chunks) == 0 {
		chunks = append(chunks, text)
	}
	return chunks
}
