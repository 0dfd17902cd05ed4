package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/internal/service/documents"
	"github.com/sandevgo/ragchat/internal/transport/cli"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/sandevgo/ragchat/pkg/srv"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload documents into the namespace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *App) error {
			conv := app.Conversation()
			formatter := command.NewResponseFormatter()
			out := cmd.OutOrStdout()

			failed := 0
			for _, path := range args {
				file, err := documents.LoadFile(path)
				if err != nil {
					cli.Print(out, formatter.Failure(err))
					failed++
					continue
				}

				ack, err := app.assistant.Upload(ctx, conv, file)
				if err != nil {
					log.FromCtx(ctx).Debug().Err(err).Str("file", path).Msg("upload failed")
					cli.Print(out, formatter.Failure(fmt.Errorf("%s: %w", file.Name, err)))
					failed++
					continue
				}
				cli.Print(out, formatter.UploadNotice(file.Name, ack))
			}

			if failed > 0 {
				return errReported
			}
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Upload documents dropped into the watch folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return withApp(ctx, func(ctx context.Context, app *App) error {
			watcher := newWatcher(ctx, app)

			services := []srv.Service{srv.Foreground(watcher, stop)}
			srv.StartServices(ctx, services)
			srv.ShutdownServices(ctx, services)
			return nil
		})
	},
}

func newWatcher(ctx context.Context, app *App) *documents.Watcher {
	watchCfg := config.NewWatchConfig(ctx)
	conv := app.Conversation()
	return documents.NewWatcher(app.orch, documents.WatchOptions{
		Dir:        watchCfg.GetDir(app.cfg.GetRuntimePath()),
		Extensions: watchCfg.Extensions,
		Settle:     watchCfg.Settle,
		Namespace:  conv.Namespace,
		UserID:     conv.UserID,
	})
}

func init() {
	rootCmd.AddCommand(uploadCmd, watchCmd)
}
