package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ragchat/pkg/log"
)

const DefaultUserID = "00000000-0000-0000-0000-000000000001"

type AppConfig struct {
	RuntimePath string `env:"RAGCHAT_RUNTIME_PATH" envDefault:".ragchat"`
	Namespace   string `env:"RAGCHAT_NAMESPACE" envDefault:"default"`
	UserID      string `env:"RAGCHAT_USER_ID" envDefault:"00000000-0000-0000-0000-000000000001"`

	// Transport Flags
	EnableTelegram bool `env:"RAGCHAT_ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"RAGCHAT_ENABLE_CLI" envDefault:"true"`
	EnableWatch    bool `env:"RAGCHAT_ENABLE_WATCH" envDefault:"false"`

	// Empty disables the rotating log file
	LogFile string `env:"RAGCHAT_LOG_FILE"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "ragchat.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c AppConfig) GetNamespace() string {
	return c.Namespace
}

func (c AppConfig) GetUserID() string {
	return c.UserID
}

func (c AppConfig) GetLogPath() string {
	return resolveInRuntime(c.RuntimePath, c.LogFile)
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
