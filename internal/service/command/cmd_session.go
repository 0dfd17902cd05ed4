package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/ragchat/internal/core"
)

// ResetSessionCommand drops the server session so the next question opens a
// new one.
type ResetSessionCommand struct {
	formatter *ResponseFormatter
}

func NewNewSessionCommand() *ResetSessionCommand {
	return &ResetSessionCommand{formatter: NewResponseFormatter()}
}

func (c *ResetSessionCommand) Name() string {
	return "new"
}

func (c *ResetSessionCommand) Description() string {
	return "Start a new conversation"
}

func (c *ResetSessionCommand) Execute(ctx context.Context, conv *core.Conversation, args []string) (string, error) {
	conv.SessionID = ""
	return c.formatter.Success("New conversation started"), nil
}

type SessionCommand struct {
	history   core.HistoryRepository
	formatter *ResponseFormatter
}

func NewSessionCommand(history core.HistoryRepository) *SessionCommand {
	return &SessionCommand{history: history, formatter: NewResponseFormatter()}
}

func (c *SessionCommand) Name() string {
	return "session"
}

func (c *SessionCommand) Description() string {
	return "Show, list or switch the server session"
}

func (c *SessionCommand) Execute(ctx context.Context, conv *core.Conversation, args []string) (string, error) {
	if len(args) == 0 {
		current := conv.SessionID
		if current == "" {
			current = "none yet, the server assigns one on the first message"
		}
		return c.formatter.Combine(
			c.formatter.Info("Current Session"),
			c.formatter.Label("Session", current),
			c.formatter.Label("Namespace", conv.Namespace),
			c.formatter.Usage("/session [list | <session id>]"),
		), nil
	}

	if args[0] == "list" {
		sessions, err := c.history.ListSessions(ctx, conv.Namespace, 10)
		if err != nil {
			return "", err
		}
		if len(sessions) == 0 {
			return c.formatter.Combine(
				c.formatter.Info("Sessions"),
				c.formatter.Label("Status", "No saved sessions in this namespace."),
			), nil
		}
		items := make([]string, len(sessions))
		for i, s := range sessions {
			items[i] = fmt.Sprintf("`%s` (%d messages, %s)", s.SessionID, s.Messages, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return c.formatter.Combine(c.formatter.Info("Sessions"), c.formatter.List(items)), nil
	}

	conv.SessionID = args[0]
	return c.formatter.Success(fmt.Sprintf("Continuing session `%s`", args[0])), nil
}

type NamespaceCommand struct {
	formatter *ResponseFormatter
}

func NewNamespaceCommand() *NamespaceCommand {
	return &NamespaceCommand{formatter: NewResponseFormatter()}
}

func (c *NamespaceCommand) Name() string {
	return "namespace"
}

func (c *NamespaceCommand) Description() string {
	return "Show or change the document namespace"
}

func (c *NamespaceCommand) Execute(ctx context.Context, conv *core.Conversation, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Current Namespace"),
			c.formatter.Label("Namespace", conv.Namespace),
			c.formatter.Usage("/namespace <name>"),
		), nil
	}

	conv.Namespace = args[0]
	// sessions are scoped to the namespace they started in
	conv.SessionID = ""
	return c.formatter.Success(fmt.Sprintf("Namespace changed to `%s`, new conversation started", args[0])), nil
}

type HistoryCommand struct {
	history   core.HistoryRepository
	formatter *ResponseFormatter
}

func NewHistoryCommand(history core.HistoryRepository) *HistoryCommand {
	return &HistoryCommand{history: history, formatter: NewResponseFormatter()}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show the last messages of this conversation"
}

func (c *HistoryCommand) Execute(ctx context.Context, conv *core.Conversation, args []string) (string, error) {
	if conv.SessionID == "" {
		return c.formatter.Label("Status", "No messages in this conversation yet."), nil
	}

	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%w: limit must be a positive number", core.ErrValidation)
		}
		limit = n
	}

	msgs, err := c.history.GetMessages(ctx, conv.SessionID, limit)
	if err != nil {
		return "", err
	}

	items := make([]string, len(msgs))
	for i, m := range msgs {
		items[i] = fmt.Sprintf("**%s**: %s", m.Role, m.Content)
	}
	return c.formatter.Combine(c.formatter.Info("History"), c.formatter.List(items)), nil
}
