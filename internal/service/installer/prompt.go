package installer

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrPromptCancelled = errors.New("prompt cancelled")

type promptModel struct {
	title     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPromptModel(title, placeholder string, secret bool) promptModel {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return promptModel{title: title, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if strings.TrimSpace(m.input.Value()) != "" {
				m.done = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return titleStyle.Render(m.title) + "\n" + m.input.View() + "\n"
}

// Prompt reads one line from the terminal. Secret input is masked.
func Prompt(title, placeholder string, secret bool) (string, error) {
	m, err := tea.NewProgram(newPromptModel(title, placeholder, secret)).Run()
	if err != nil {
		return "", err
	}
	final := m.(promptModel)
	if final.cancelled {
		return "", ErrPromptCancelled
	}
	value := final.input.Value()
	if !secret {
		value = strings.TrimSpace(value)
	}
	return value, nil
}
