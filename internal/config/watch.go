package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ragchat/pkg/log"
)

type WatchConfig struct {
	Dir        string        `env:"RAGCHAT_WATCH_DIR" envDefault:"inbox"`
	Extensions []string      `env:"RAGCHAT_WATCH_EXTENSIONS" envSeparator:"," envDefault:".pdf,.txt,.md,.docx"`
	Settle     time.Duration `env:"RAGCHAT_WATCH_SETTLE" envDefault:"500ms"`
}

func NewWatchConfig(ctx context.Context) *WatchConfig {
	c := &WatchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Watch config")
	}
	return c
}

// GetDir resolves a relative watch folder against the runtime directory.
func (c WatchConfig) GetDir(runtimePath string) string {
	return resolveInRuntime(runtimePath, c.Dir)
}
