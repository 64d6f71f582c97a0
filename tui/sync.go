package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SyncMode selects which sync operation the form drives.
type SyncMode int

const (
	SyncModeCreate SyncMode = iota
	SyncModeApply
)

// SyncAction holds the values the user confirmed in the sync form.
type SyncAction struct {
	Mode  SyncMode
	Email string
	Code  string
}

type syncField int

const (
	fieldMode syncField = iota
	fieldEmail
	fieldCode
)

// syncFormModel is the interactive create/apply wizard.
type syncFormModel struct {
	mode    SyncMode
	email   textinput.Model
	code    textinput.Model
	focused syncField
	err     string
	done    bool
	action  *SyncAction
	width   int

	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	focusedStyle  lipgloss.Style
	selectedStyle lipgloss.Style
	errorStyle    lipgloss.Style
	helpStyle     lipgloss.Style
}

func newSyncFormModel() syncFormModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Width = 40
	email.Focus()

	code := textinput.New()
	code.Placeholder = "GOLDEN-TOKYO-42"
	code.Width = 40
	code.CharLimit = 32

	return syncFormModel{
		email:   email,
		code:    code,
		focused: fieldEmail,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")),
		labelStyle: lipgloss.NewStyle().
			Width(10).
			Foreground(lipgloss.Color("7")),
		focusedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
	}
}

// Init implements tea.Model.
func (m syncFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m syncFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		case "tab", "down":
			m.focusNext()
			return m, nil
		case "shift+tab", "up":
			m.focusPrev()
			return m, nil
		case "left", "right":
			if m.focused == fieldMode {
				m.toggleMode()
				return m, nil
			}
		case " ":
			if m.focused == fieldMode {
				m.toggleMode()
				return m, nil
			}
		case "enter":
			if m.focused == fieldMode {
				m.focusNext()
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	switch m.focused {
	case fieldEmail:
		m.email, cmd = m.email.Update(msg)
	case fieldCode:
		m.code, cmd = m.code.Update(msg)
	}
	return m, cmd
}

func (m *syncFormModel) toggleMode() {
	if m.mode == SyncModeCreate {
		m.mode = SyncModeApply
	} else {
		m.mode = SyncModeCreate
	}
	if m.mode == SyncModeCreate && m.focused == fieldCode {
		m.focusField(fieldEmail)
	}
}

func (m *syncFormModel) focusNext() {
	switch m.focused {
	case fieldMode:
		m.focusField(fieldEmail)
	case fieldEmail:
		if m.mode == SyncModeApply {
			m.focusField(fieldCode)
		} else {
			m.focusField(fieldMode)
		}
	case fieldCode:
		m.focusField(fieldMode)
	}
}

func (m *syncFormModel) focusPrev() {
	switch m.focused {
	case fieldMode:
		if m.mode == SyncModeApply {
			m.focusField(fieldCode)
		} else {
			m.focusField(fieldEmail)
		}
	case fieldEmail:
		m.focusField(fieldMode)
	case fieldCode:
		m.focusField(fieldEmail)
	}
}

func (m *syncFormModel) focusField(f syncField) {
	m.email.Blur()
	m.code.Blur()
	m.focused = f
	switch f {
	case fieldEmail:
		m.email.Focus()
	case fieldCode:
		m.code.Focus()
	}
}

func (m syncFormModel) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	if email == "" {
		m.err = "Email is required"
		return m, nil
	}
	code := strings.TrimSpace(m.code.Value())
	if m.mode == SyncModeApply && code == "" {
		m.err = "Sync code is required"
		return m, nil
	}

	m.action = &SyncAction{Mode: m.mode, Email: email, Code: code}
	m.done = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m syncFormModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.titleStyle.Render("Sync Preferences"))
	b.WriteString("\n\n")

	modeLabel := "Mode:"
	modeVal := "[Create code ▼]"
	if m.mode == SyncModeApply {
		modeVal = "[Apply code ▼]"
	}
	if m.focused == fieldMode {
		b.WriteString(m.focusedStyle.Render(modeLabel))
		b.WriteString(" ")
		b.WriteString(m.focusedStyle.Render(modeVal))
	} else {
		b.WriteString(m.labelStyle.Render(modeLabel))
		b.WriteString(" ")
		b.WriteString(m.selectedStyle.Render(modeVal))
	}
	b.WriteString("\n")

	m.renderInput(&b, "Email:", m.email, m.focused == fieldEmail)
	if m.mode == SyncModeApply {
		m.renderInput(&b, "Code:", m.code, m.focused == fieldCode)
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(m.errorStyle.Render("Error: " + m.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render("Tab navigate • ←→ switch mode • Enter confirm • Esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m syncFormModel) renderInput(b *strings.Builder, label string, ti textinput.Model, focused bool) {
	if focused {
		b.WriteString(m.focusedStyle.Render(label))
	} else {
		b.WriteString(m.labelStyle.Render(label))
	}
	b.WriteString(" ")
	b.WriteString(ti.View())
	b.WriteString("\n")
}

// RunSyncForm runs the interactive sync wizard and returns the confirmed
// action, or nil if the user cancelled.
func RunSyncForm() (*SyncAction, error) {
	p := tea.NewProgram(newSyncFormModel())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run sync form: %w", err)
	}
	m, ok := final.(syncFormModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return m.action, nil
}
