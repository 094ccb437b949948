// Package onboarding is the enrollment wizard screen.
package onboarding

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/tui/theme"
	"tableflip.dev/beho/pkg/tui/ui"
	"tableflip.dev/beho/pkg/tui/views/pinpad"
)

// Ensure Model satisfies the Component interface.
var _ ui.Component = (*Model)(nil)

// CompletedMsg carries the finished enrollment to the owner.
type CompletedMsg struct {
	Result enroll.Result
}

const (
	fieldFirst = iota
	fieldLast
	fieldAge
	fieldCount
)

// Model drives an enroll.Flow from key presses.
type Model struct {
	flow   *enroll.Flow
	inputs []textinput.Model
	focus  int

	width  int
	height int
	theme  theme.Theme
}

// New constructs the wizard at the profile step.
func New(th theme.Theme) *Model {
	m := &Model{flow: enroll.New(), theme: th}
	for i, label := range []string{"Your first name", "Your last name", "Your age"} {
		ti := textinput.New()
		ti.Placeholder = label
		ti.CharLimit = 64
		ti.Prompt = "> "
		if i == fieldAge {
			ti.CharLimit = 3
		}
		m.inputs = append(m.inputs, ti)
	}
	return m
}

// Flow exposes the underlying enrollment state.
func (m *Model) Flow() *enroll.Flow { return m.flow }

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd {
	return m.inputs[m.focus].Focus()
}

// SetSize stores the available viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if m.flow.Step() == enroll.StepProfile {
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.flow.Step() {
	case enroll.StepProfile:
		return m, m.updateProfile(key)
	case enroll.StepCreatePIN, enroll.StepConfirmPIN:
		switch key.String() {
		case "enter":
			_ = m.flow.SubmitPIN()
		case "backspace":
			m.flow.Backspace()
		default:
			if r, ok := pinpad.Digit(key); ok {
				m.flow.Press(r)
			}
		}
	case enroll.StepBiometrics:
		switch strings.ToLower(key.String()) {
		case "y":
			return m, m.complete(true)
		case "n", "enter":
			return m, m.complete(false)
		}
	}
	return m, nil
}

func (m *Model) updateProfile(key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		if m.focus < fieldAge {
			return m.setFocus(m.focus + 1)
		}
		err := m.flow.SubmitProfile(m.inputs[fieldFirst].Value(), m.inputs[fieldLast].Value(), m.inputs[fieldAge].Value())
		if err == nil {
			m.inputs[m.focus].Blur()
		}
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	return cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m *Model) complete(biometric bool) tea.Cmd {
	res, err := m.flow.ChooseBiometrics(biometric)
	if err != nil {
		return nil
	}
	return func() tea.Msg { return CompletedMsg{Result: res} }
}

// View renders the current step centered in the viewport.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	body := m.theme.Modal.Body
	var lines []string
	switch m.flow.Step() {
	case enroll.StepProfile:
		lines = append(lines,
			m.theme.Modal.Title.Render("Welcome to Beho"),
			body.Render("Let's get your premium experience set up."),
			"",
		)
		for i, label := range []string{"First Name", "Last Name", "Age"} {
			lines = append(lines, body.Render(label), m.inputs[i].View())
		}
		lines = append(lines, "", body.Render("tab next field · enter continue"))
	case enroll.StepCreatePIN, enroll.StepConfirmPIN:
		title, sub := "Create Your PIN", "Choose a 4 to 6 digit PIN to secure your notes."
		if m.flow.Step() == enroll.StepConfirmPIN {
			title, sub = "Confirm Your PIN", "Enter your PIN again to confirm."
		}
		lines = append(lines,
			m.theme.Modal.Title.Render(title),
			body.Render(sub),
			"",
			pinpad.Dots(m.theme, m.flow.PINLength()),
			"",
		)
		submit := "enter next"
		if !m.flow.CanSubmit() {
			submit = "4-6 digits"
		}
		lines = append(lines, body.Render("0-9 type · backspace delete · "+submit))
	case enroll.StepBiometrics:
		lines = append(lines,
			m.theme.Modal.Title.Render("Enable Biometrics?"),
			body.Render("Use your device's biometrics to unlock Beho."),
			"",
			body.Render("y enable · n not now"),
		)
	default:
		lines = append(lines, m.theme.Modal.Title.Render("All set"))
	}
	if msg := enroll.Message(m.flow.Err()); msg != "" {
		lines = append(lines, "", m.theme.Modal.Error.Render(msg))
	}

	frame := m.theme.Modal.Frame.Width(idealModalWidth(width))
	panel := frame.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

func idealModalWidth(width int) int {
	modalWidth := width - 8
	if modalWidth > 60 {
		modalWidth = 60
	}
	if modalWidth < 24 {
		modalWidth = width - 4
		if modalWidth < 20 {
			modalWidth = 20
		}
	}
	return modalWidth
}
