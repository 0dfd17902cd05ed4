package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/ragchat/internal/core"
)

type Profiler interface {
	CurrentUser(ctx context.Context) (core.UserProfile, error)
}

type WhoamiCommand struct {
	auth      Profiler
	formatter *ResponseFormatter
}

func NewWhoamiCommand(auth Profiler) *WhoamiCommand {
	return &WhoamiCommand{auth: auth, formatter: NewResponseFormatter()}
}

func (c *WhoamiCommand) Name() string {
	return "whoami"
}

func (c *WhoamiCommand) Description() string {
	return "Show the signed-in user"
}

func (c *WhoamiCommand) Execute(ctx context.Context, conv *core.Conversation, args []string) (string, error) {
	profile, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(profile.Fields))
	for k := range profile.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{c.formatter.Info("Current User")}
	for _, k := range keys {
		parts = append(parts, c.formatter.Label(k, fmt.Sprint(profile.Fields[k])))
	}
	return c.formatter.Combine(parts...), nil
}
