package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep clears values the chosen channel does not use
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !state.Settings.EnableTelegram {
		state.Settings.TelegramToken = ""
		state.Settings.TelegramOwnerID = 0
	}
	if !state.Settings.EnableWatch {
		state.Settings.WatchDir = ""
	}

	// Signal completion
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
