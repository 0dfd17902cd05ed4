package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, conv *Conversation, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, conv *Conversation, args []string) (string, error)
}

// Conversation is the per-user chat position kept by a front-end: which
// namespace it talks to and which server session it continues.
type Conversation struct {
	Namespace string
	SessionID string
	UserID    string
}
