package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/ragchat/internal/transport/cli"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List stored conversations or show one of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *App) error {
			conv := app.Conversation()

			input := "/session list"
			if len(args) == 1 {
				conv.SessionID = args[0]
				input = fmt.Sprintf("/history %d", historyLimit)
			}

			result, _ := app.router.Execute(ctx, conv, input)
			cli.Print(cmd.OutOrStdout(), result)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of messages to show")
	rootCmd.AddCommand(historyCmd)
}
