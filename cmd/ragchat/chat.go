package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/sandevgo/ragchat/internal/transport/cli"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/sandevgo/ragchat/pkg/srv"
	"github.com/spf13/cobra"
)

var (
	askSession  string
	askContinue bool
	chatNew     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *App) error {
			conv := app.Conversation()
			switch {
			case askSession != "":
				conv.SessionID = askSession
			case askContinue:
				if _, err := app.assistant.Resume(ctx, conv); err != nil {
					return err
				}
			}

			if !cli.Handle(ctx, cmd.OutOrStdout(), app.assistant, nil, conv, strings.Join(args, " ")) {
				return errReported
			}
			return nil
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return withApp(ctx, func(ctx context.Context, app *App) error {
			conv := app.Conversation()
			if !chatNew {
				resumed, err := app.assistant.Resume(ctx, conv)
				if err != nil {
					return err
				}
				if resumed {
					log.FromCtx(ctx).Info().Str("session_id", conv.SessionID).Msg("continuing last conversation, /new starts a fresh one")
				}
			}

			rl, err := cli.NewReadLine(app.assistant, app.router, conv, app.cfg.GetRuntimePath())
			if err != nil {
				return err
			}

			services := []srv.Service{srv.Foreground(rl, stop)}
			srv.StartServices(ctx, services)
			srv.ShutdownServices(ctx, services)
			return nil
		})
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue the given session id")
	askCmd.Flags().BoolVarP(&askContinue, "continue", "c", false, "continue the last session in the namespace")
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "start a new conversation instead of resuming the last one")
	rootCmd.AddCommand(askCmd, chatCmd)
}
