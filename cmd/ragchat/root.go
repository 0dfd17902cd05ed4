package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/service/ui"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug     bool
	namespace string
)

var rootCmd = &cobra.Command{
	Use:           "ragchat",
	Short:         "RAGChat, chat with your documents",
	Long:          `RAGChat talks to a retrieval-augmented chat backend: ask questions, upload documents, keep conversations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if err != errReported {
			os.Stderr.WriteString(ui.ErrorStyle.Render("error: ") + err.Error() + "\n")
		}
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "document namespace (overrides RAGCHAT_NAMESPACE)")
}

// setupLogger loads the runtime .env first so RAGCHAT_LOG_FILE and
// RAGCHAT_DEBUG from it take effect.
func setupLogger(ctx context.Context, console io.Writer) (context.Context, func()) {
	envFile, envErr := initEnv(config.GetRuntimePath())

	ctx, flush := log.NewContextWithOptions(ctx, log.Options{
		Debug:    debug || config.IsDebug(),
		Console:  console,
		FilePath: config.GetLogPath(),
	})

	logger := log.FromCtx(ctx)
	if envErr != nil {
		logger.Warn().Err(envErr).Str("path", envFile).Msg("failed to load .env file")
	} else if envFile != "" {
		logger.Debug().Str("path", envFile).Msg("loaded .env file")
	}
	return ctx, flush
}

// initEnv returns the loaded file path, or "" when there is none yet.
func initEnv(runtimePath string) (string, error) {
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return envFile, err
	}

	return envFile, godotenv.Load(envFile)
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return ui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return ui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return ui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return ui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}{{StyleTitle "GLOBAL FLAGS"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
