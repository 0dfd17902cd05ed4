package installer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// InputStep asks for one value. Empty input falls back to the current value
// when there is one.
type InputStep struct {
	input   textinput.Model
	prompt  string
	skip    func(state *InstallState) bool
	current func(state *InstallState) string
	apply   func(state *InstallState, val string) error
	err     error
}

func newInputStep(prompt, placeholder string) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder
	return &InputStep{input: ti, prompt: prompt}
}

func (s *InputStep) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return nextMsg{} })
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && s.current != nil {
			val = s.current(state)
		}
		if err := s.apply(state, val); err != nil {
			s.err = err
			return s, cmd
		}
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + ":\n\n" + s.input.View() + "\n\n")
	if s.current != nil {
		if cur := s.current(state); cur != "" {
			b.WriteString(itemStyle.Render("default: "+cur) + "\n\n")
		}
	}
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}

func NewBackendURLStep() Step {
	s := newInputStep("Enter the RAG backend base URL", "https://rag.example.com")
	s.apply = func(state *InstallState, val string) error {
		u, err := url.Parse(val)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("enter an http or https URL")
		}
		state.Settings.BaseURL = strings.TrimRight(val, "/")
		return nil
	}
	return s
}

func NewNamespaceStep() Step {
	s := newInputStep("Enter the document namespace", "default")
	s.current = func(state *InstallState) string { return state.Settings.Namespace }
	s.apply = func(state *InstallState, val string) error {
		if val == "" {
			return fmt.Errorf("namespace cannot be empty")
		}
		state.Settings.Namespace = val
		return nil
	}
	return s
}

func NewUserIDStep() Step {
	s := newInputStep("Enter your user id for uploads", "00000000-0000-0000-0000-000000000001")
	s.current = func(state *InstallState) string { return state.Settings.UserID }
	s.apply = func(state *InstallState, val string) error {
		if _, err := uuid.Parse(val); err != nil {
			return fmt.Errorf("user id must be a UUID")
		}
		state.Settings.UserID = val
		return nil
	}
	return s
}

func NewWatchDirStep() Step {
	s := newInputStep("Folder to watch for new documents", "inbox")
	s.skip = func(state *InstallState) bool { return !state.Settings.EnableWatch }
	s.current = func(state *InstallState) string {
		if state.Settings.WatchDir == "" {
			return "inbox"
		}
		return state.Settings.WatchDir
	}
	s.apply = func(state *InstallState, val string) error {
		state.Settings.WatchDir = val
		return nil
	}
	return s
}
