package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/ragchat/internal/core"
)

type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return fmt.Sprintf("⚙️️ **%s**\n\n", title)
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✅ **%s**\n", message)
}

func (f *ResponseFormatter) Error(operation string, err error) string {
	return fmt.Sprintf("❌ **%s failed**\n\n**Issue**: %s\n", operation, err.Error())
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

func (f *ResponseFormatter) Usage(command string) string {
	return fmt.Sprintf("**Usage**:\n```%s```\n", command)
}

func (f *ResponseFormatter) Examples(examples []string) string {
	var sb strings.Builder
	sb.WriteString("**Examples**:\n")
	for _, ex := range examples {
		sb.WriteString(fmt.Sprintf("`%s`\n", ex))
	}
	return sb.String()
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("› %s\n", item))
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return fmt.Sprintf("**Tip**: %s\n", text)
}

func (f *ResponseFormatter) Section(emoji, title, content string) string {
	return fmt.Sprintf("%s **%s**\n%s\n", emoji, title, content)
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}

// Answer appends the citations to the answer text.
func (f *ResponseFormatter) Answer(resp core.ChatResponse) string {
	if len(resp.Sources) == 0 {
		return resp.Answer
	}
	return f.Combine(resp.Answer, f.Sources(resp.Sources))
}

func (f *ResponseFormatter) Sources(sources []core.Source) string {
	items := make([]string, len(sources))
	for i, s := range sources {
		if s.ChunkID == "" {
			items[i] = fmt.Sprintf("`%s`", s.DocumentID)
			continue
		}
		items[i] = fmt.Sprintf("`%s` #%s", s.DocumentID, s.ChunkID)
	}
	return f.Section("📚", "Sources", f.List(items))
}

// Failure describes an orchestrator error in terms a user can act on.
func (f *ResponseFormatter) Failure(err error) string {
	switch core.KindOf(err) {
	case core.KindAuth:
		return f.Combine(f.Error("Request", err), f.Tip("run `ragchat login` and try again"))
	case core.KindConcurrent:
		return "⏳ The previous request is still running, please wait for it to finish.\n"
	case core.KindTimeout:
		return f.Combine(f.Error("Request", err), f.Tip("the server did not answer in time, try again"))
	case core.KindNetwork:
		return f.Combine(f.Error("Request", err), f.Tip("check that the server is reachable"))
	}
	return f.Error("Request", err)
}

// UploadNotice is shown once the server acknowledged a document. Indexing
// runs later and its outcome is not reported back.
func (f *ResponseFormatter) UploadNotice(name string, ack core.UploadAck) string {
	parts := []string{f.Success("Document uploaded. Indexing in progress.")}
	if name != "" {
		parts = append(parts, f.Label("File", name))
	}
	if ack.DocumentID != "" {
		parts = append(parts, f.Label("Document", ack.DocumentID))
	}
	return f.Combine(parts...)
}
