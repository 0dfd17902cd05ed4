package conv

import (
	"github.com/gomarkdown/markdown/html"
	"github.com/microcosm-cc/bluemonday"
)

// Allowed tags https://core.telegram.org/bots/api#html-style
var telegramPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").OnElements("code")
	return p
}()

// MarkdownToTelegramHTML renders an answer for Telegram's HTML parse mode.
// Everything outside the Bot API subset is stripped, keeping its text.
func MarkdownToTelegramHTML(md []byte) string {
	unsafe := render(md, html.RendererOptions{
		Flags:          html.CommonFlags | html.HrefTargetBlank,
		RenderNodeHook: flatBlocksHook,
	})
	return string(telegramPolicy.SanitizeBytes(unsafe))
}
