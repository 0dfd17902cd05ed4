package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/transport/cli"
	"github.com/sandevgo/ragchat/internal/transport/telegram"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/sandevgo/ragchat/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the configured front-ends",
	Long:  `Starts every enabled front-end (terminal chat, Telegram bot, folder watch) against one shared client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		ctx, flushLog := setupLogger(ctx, nil)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting ragchat")

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}

		services, err := NewServices(ctx, app, stop)
		if err != nil {
			app.Close()
			return err
		}

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("ragchat has been shut down gracefully")
		return nil
	},
}

// NewServices lists the enabled front-ends. The database closes last.
func NewServices(ctx context.Context, app *App, stop context.CancelFunc) ([]srv.Service, error) {
	var services []srv.Service

	// Telegram Bot
	if app.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, app.cfg, app.assistant, app.router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if app.cfg.EnableWatch {
		services = append(services, newWatcher(ctx, app))
	}

	if app.cfg.EnableCLI {
		conv := app.Conversation()
		if _, err := app.assistant.Resume(ctx, conv); err != nil {
			return nil, err
		}
		rl, err := cli.NewReadLine(app.assistant, app.router, conv, app.cfg.GetRuntimePath())
		if err != nil {
			return nil, err
		}
		// leaving the terminal chat stops everything else too
		services = append(services, srv.Foreground(rl, stop))
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no front-end enabled, run 'ragchat setup'")
	}

	return append(services, srv.NewCleanup(app.Close)), nil
}

func init() {
	rootCmd.AddCommand(startCmd)
}
