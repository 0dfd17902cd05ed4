package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/service/installer"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/spf13/cobra"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the backend address and front-ends",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), nil)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting setup")

		// run wizard (includes save step)
		runtimePath := config.GetRuntimePath()
		if _, err := installer.RunWizard(runtimePath, setupForce); err != nil {
			return err
		}

		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Overload(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! Run 'ragchat login' next.")
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVarP(&setupForce, "force", "f", false, "overwrite an existing configuration")
	rootCmd.AddCommand(setupCmd)
}
