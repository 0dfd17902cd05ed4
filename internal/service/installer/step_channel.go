package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	ChannelTerminal = "Terminal"
	ChannelTelegram = "Telegram"
	ChannelWatch    = "Terminal + folder watch"
)

var channelHints = map[string]string{
	ChannelTerminal: "ragchat start opens an interactive chat in this terminal",
	ChannelTelegram: "a private Telegram bot answers you and accepts documents",
	ChannelWatch:    "terminal chat, plus files dropped in a folder are uploaded",
}

// ChannelStep picks the front-ends 'ragchat start' runs.
type ChannelStep struct {
	choices []string
	cursor  int
}

func NewChannelStep() Step {
	return &ChannelStep{
		choices: []string{ChannelTerminal, ChannelTelegram, ChannelWatch},
		cursor:  0,
	}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.Channel = s.choices[s.cursor]
			state.Settings.EnableTelegram = state.Channel == ChannelTelegram
			state.Settings.EnableWatch = state.Channel == ChannelWatch
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Where do you want to chat?\n\n")
	for i, choice := range s.choices {
		cursor := " "
		if s.cursor == i {
			cursor = "❯"
			b.WriteString(selStyle.Render(fmt.Sprintf("%s %s", cursor, choice)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("%s %s", cursor, choice)) + "\n")
		}
	}
	b.WriteString("\n" + itemStyle.Render(channelHints[s.choices[s.cursor]]) + "\n")
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
