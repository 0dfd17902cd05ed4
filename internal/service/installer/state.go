package installer

import "github.com/sandevgo/ragchat/internal/config"

// Settings is what the wizard writes to <runtime>/.env. Field tags match the
// config structs that read it back.
type Settings struct {
	BaseURL         string `env:"RAGCHAT_API_BASE_URL"`
	Namespace       string `env:"RAGCHAT_NAMESPACE"`
	UserID          string `env:"RAGCHAT_USER_ID"`
	EnableTelegram  bool   `env:"RAGCHAT_ENABLE_TELEGRAM"`
	TelegramToken   string `env:"RAGCHAT_TELEGRAM_TOKEN"`
	TelegramOwnerID int64  `env:"RAGCHAT_TELEGRAM_OWNER_ID"`
	EnableWatch     bool   `env:"RAGCHAT_ENABLE_WATCH"`
	WatchDir        string `env:"RAGCHAT_WATCH_DIR"`
}

type InstallState struct {
	Settings    Settings
	Channel     string
	RuntimePath string
	// Overwrite an existing .env
	Force bool
}

func NewInstallState(runtimePath string, force bool) *InstallState {
	return &InstallState{
		Settings: Settings{
			Namespace: "default",
			UserID:    config.DefaultUserID,
		},
		RuntimePath: runtimePath,
		Force:       force,
	}
}
