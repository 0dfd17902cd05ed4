package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/pkg/conv"
	"github.com/sandevgo/ragchat/pkg/log"
)

type Assistant interface {
	Ask(ctx context.Context, conv *core.Conversation, message string) (core.ChatResponse, error)
}

type ReadLine struct {
	assistant Assistant
	router    core.CmdRouter
	conv      *core.Conversation
	formatter *command.ResponseFormatter
	rl        *readline.Instance
}

func NewReadLine(assistant Assistant, router core.CmdRouter, conversation *core.Conversation, runtimePath string) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptFor(conversation),
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		AutoComplete:    completer(router),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		assistant: assistant,
		router:    router,
		conv:      conversation,
		formatter: command.NewResponseFormatter(),
		rl:        rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("namespace", r.conv.Namespace).Msg("chat started. Type /help for commands, 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if ctx.Err() != nil {
				return nil // closed by Shutdown
			}
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		Handle(ctx, r.rl.Stdout(), r.assistant, r.router, r.conv, line)
		r.rl.SetPrompt(promptFor(r.conv))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// Handle runs one line of input, a command or a question, and prints the
// result to out. It is shared by the REPL and the one-shot ask command.
func Handle(ctx context.Context, out io.Writer, assistant Assistant, router core.CmdRouter, conversation *core.Conversation, line string) bool {
	formatter := command.NewResponseFormatter()

	if router != nil {
		if result, handled := router.Execute(ctx, conversation, line); handled {
			Print(out, result)
			return true
		}
	}

	resp, err := assistant.Ask(ctx, conversation, line)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("chat request failed")
		Print(out, formatter.Failure(err))
		return false
	}

	Print(out, formatter.Answer(resp))
	return true
}

// Print renders markdown as terminal text, falling back to the raw markdown.
func Print(out io.Writer, md string) {
	text, err := conv.MarkdownToText(md)
	if err != nil || strings.TrimSpace(text) == "" {
		text = md
	}
	fmt.Fprintln(out, strings.TrimRight(text, "\n"))
}

func promptFor(c *core.Conversation) string {
	return fmt.Sprintf("[%s] >>> ", c.Namespace)
}

func completer(router core.CmdRouter) readline.AutoCompleter {
	if router == nil {
		return nil
	}
	var items []readline.PrefixCompleterInterface
	for _, cmd := range router.ListCommands() {
		items = append(items, readline.PcItem("/"+cmd.Name()))
	}
	return readline.NewPrefixCompleter(items...)
}
