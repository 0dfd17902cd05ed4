package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/ragchat/internal/core"
)

// Router dispatches "/name args" input to commands. Anything else is a
// question and is left to the caller.
type Router struct {
	commands  map[string]core.Command
	aliases   map[string]string
	formatter *ResponseFormatter
}

var _ core.CmdRouter = (*Router)(nil)

func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
		// telegram sends /start when a chat is opened
		aliases:   map[string]string{"start": "help"},
		formatter: NewResponseFormatter(),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	c.commands["help"] = NewHelpCommand(c)
	return c
}

func (c *Router) Execute(ctx context.Context, conv *core.Conversation, input string) (string, bool) {
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	// telegram appends the bot name in groups: /help@ragchat_bot
	name, _, _ = strings.Cut(name, "@")
	args := parts[1:]

	if target, ok := c.aliases[name]; ok {
		name = target
	}

	cmd, ok := c.commands[name]
	if !ok {
		return c.formatter.Combine(
			fmt.Sprintf("Unknown command: /%s", name),
			c.formatter.Tip("/help lists the commands"),
		), true
	}

	result, err := cmd.Execute(ctx, conv, args)
	if err != nil {
		return c.formatter.Error(name, err), true
	}
	return result, true
}

func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}
