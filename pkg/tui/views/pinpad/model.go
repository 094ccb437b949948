// Package pinpad renders a pin.Prompt as a keypad screen.
package pinpad

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/tui/theme"
)

// RedrawMsg asks the owner to re-render once an error text has expired.
type RedrawMsg struct{}

// Model is a keypad bound to a prompt.
type Model struct {
	Prompt *pin.Prompt
	// Submit evaluates the prompt; it defaults to Prompt.Submit.
	Submit func() pin.Result
	// Hint is shown under the dots, for example "esc close".
	Hint string

	theme  theme.Theme
	width  int
	height int
}

// New returns a keypad for p.
func New(p *pin.Prompt, th theme.Theme) *Model {
	return &Model{Prompt: p, Submit: p.Submit, theme: th}
}

// SetSize stores the available viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// HandleKey applies a key press. It reports the submit result when enter
// was pressed, and a command that redraws after a rejection's error text
// expires.
func (m *Model) HandleKey(msg tea.KeyPressMsg) (pin.Result, tea.Cmd) {
	switch msg.String() {
	case "enter":
		res := m.Submit()
		if res == pin.ResultRejected {
			return res, RedrawAfter(pin.ErrorDisplay)
		}
		return res, nil
	case "backspace":
		m.Prompt.Backspace()
		return pin.ResultIncomplete, nil
	}
	if r, ok := Digit(msg); ok {
		m.Prompt.Press(r)
	}
	return pin.ResultIncomplete, nil
}

// Digit extracts a single typed digit from a key press.
func Digit(msg tea.KeyPressMsg) (rune, bool) {
	if len(msg.Text) != 1 {
		return 0, false
	}
	r := rune(msg.Text[0])
	if r < '0' || r > '9' {
		return 0, false
	}
	return r, true
}

// RedrawAfter schedules a RedrawMsg.
func RedrawAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return RedrawMsg{} })
}

// Dots renders n filled positions out of pin.MaxLength.
func Dots(th theme.Theme, n int) string {
	dots := make([]string, 0, pin.MaxLength)
	for i := 0; i < pin.MaxLength; i++ {
		if i < n {
			dots = append(dots, th.Keypad.Filled.Render("●"))
		} else {
			dots = append(dots, th.Keypad.Empty.Render("○"))
		}
	}
	return strings.Join(dots, " ")
}

// Panel renders the keypad body without placing it on screen.
func (m *Model) Panel() string {
	subtitle := m.theme.Keypad.Subtitle.Render(m.Prompt.Subtitle())
	if m.Prompt.Failed() {
		subtitle = m.theme.Keypad.Error.Render(m.Prompt.Subtitle())
	}
	lines := []string{
		m.theme.Modal.Title.Render(m.Prompt.Title),
		subtitle,
		"",
		Dots(m.theme, m.Prompt.Len()),
		"",
	}
	hint := "0-9 type · backspace delete · enter submit"
	if m.Hint != "" {
		hint += " · " + m.Hint
	}
	lines = append(lines, m.theme.Footer.Help.Render(hint))
	return m.theme.Modal.Frame.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// View renders the keypad centered in the viewport.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.Panel())
}
