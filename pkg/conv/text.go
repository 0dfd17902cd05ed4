package conv

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown/html"
	"github.com/inbucket/html2text"
)

// MarkdownToText renders an answer for a plain terminal. Tables are drawn and
// link targets kept.
func MarkdownToText(md string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}

	rendered := render([]byte(md), html.RendererOptions{Flags: html.CommonFlags})
	text, err := html2text.FromString(string(rendered), html2text.Options{
		PrettyTables: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render answer: %w", err)
	}
	return text, nil
}
