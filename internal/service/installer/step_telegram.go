package installer

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
)

func telegramDisabled(state *InstallState) bool {
	return !state.Settings.EnableTelegram
}

// NewTelegramTokenStep collects the Telegram bot token
func NewTelegramTokenStep() Step {
	s := newInputStep("Enter your Telegram Bot Token", "123456789:ABCDEF...")
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'
	s.skip = telegramDisabled
	s.apply = func(state *InstallState, val string) error {
		if val == "" {
			return fmt.Errorf("token cannot be empty")
		}
		state.Settings.TelegramToken = val
		return nil
	}
	return s
}

// NewTelegramOwnerStep collects the Telegram owner ID
func NewTelegramOwnerStep() Step {
	s := newInputStep("Enter your Telegram User ID (Owner)", "123456789")
	s.skip = telegramDisabled
	s.apply = func(state *InstallState, val string) error {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("owner id must be a positive number")
		}
		state.Settings.TelegramOwnerID = id
		return nil
	}
	return s
}
