// Package settings is the security settings overlay.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/jonboulle/clockwork"

	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/tui/theme"
	"tableflip.dev/beho/pkg/tui/ui"
	"tableflip.dev/beho/pkg/tui/views/pinpad"
)

var _ ui.Overlay = (*Model)(nil)

// ClosedMsg reports that settings were dismissed. Status carries the last
// outcome, if any.
type ClosedMsg struct {
	Status string
}

type stage int

const (
	stageMenu stage = iota
	stageCurrentPIN
	stageNewPIN
	stageConfirmReset
)

type item int

const (
	itemChangePIN item = iota
	itemAutoLock
	itemBiometric
	itemResetSecurity
	itemResetApp
	itemCount
)

// Model edits the session's security settings.
type Model struct {
	sess  *session.Manager
	clock clockwork.Clock

	active bool
	stage  stage
	cursor item
	pad    *pinpad.Model
	oldPIN string
	reset  item
	input  textinput.Model
	status string
	err    string

	width  int
	height int
	theme  theme.Theme
}

// New returns a closed settings overlay.
func New(sess *session.Manager, clock clockwork.Clock, th theme.Theme) *Model {
	ti := textinput.New()
	ti.Placeholder = "type yes to confirm"
	ti.CharLimit = 8
	ti.Prompt = "> "
	return &Model{sess: sess, clock: clock, input: ti, theme: th}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.pad != nil {
		m.pad.SetSize(width, height)
	}
}

// Open shows the menu.
func (m *Model) Open() {
	m.active = true
	m.toMenu()
	m.cursor = itemChangePIN
	m.status = ""
}

func (m *Model) IsOpen() bool { return m.active }

// Close hides the overlay and forgets any PIN typed so far.
func (m *Model) Close() {
	m.active = false
	m.toMenu()
}

func (m *Model) toMenu() {
	m.stage = stageMenu
	m.oldPIN = ""
	m.err = ""
	if m.pad != nil {
		m.pad.Prompt.Reset()
		m.pad = nil
	}
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) closeCmd() tea.Cmd {
	status := m.status
	m.Close()
	return func() tea.Msg { return ClosedMsg{Status: status} }
}

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if m.stage == stageConfirmReset {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.stage {
	case stageMenu:
		return m, m.updateMenu(key)
	case stageCurrentPIN, stageNewPIN:
		return m, m.updatePIN(key)
	case stageConfirmReset:
		return m, m.updateConfirm(key)
	}
	return m, nil
}

func (m *Model) updateMenu(key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		return m.closeCmd()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < itemCount-1 {
			m.cursor++
		}
	case "enter", "space":
		return m.activate()
	}
	return nil
}

func (m *Model) activate() tea.Cmd {
	m.err = ""
	switch m.cursor {
	case itemChangePIN:
		m.stage = stageCurrentPIN
		m.pad = pinpad.New(pin.NewEnterPrompt("Current PIN", m.sess.Verify, m.clock), m.theme)
		m.pad.Hint = "esc back"
		m.pad.SetSize(m.width, m.height)
	case itemAutoLock:
		next := nextAutoLock(m.sess.AutoLock())
		if err := m.sess.SetAutoLock(next); err != nil {
			m.err = err.Error()
			return nil
		}
		m.status = "Auto-lock: " + AutoLockLabel(next)
	case itemBiometric:
		enabled := !m.sess.Snapshot().Biometric
		if err := m.sess.SetBiometric(enabled); err != nil {
			m.err = err.Error()
			return nil
		}
		m.status = "Biometrics " + onOff(enabled)
	case itemResetSecurity, itemResetApp:
		m.stage = stageConfirmReset
		m.reset = m.cursor
		return m.input.Focus()
	}
	return nil
}

func (m *Model) updatePIN(key tea.KeyPressMsg) tea.Cmd {
	if key.String() == "esc" {
		m.toMenu()
		return nil
	}
	res, cmd := m.pad.HandleKey(key)
	if res != pin.ResultAccepted {
		return cmd
	}
	if m.stage == stageCurrentPIN {
		m.oldPIN = m.pad.Prompt.Value()
		m.stage = stageNewPIN
		m.pad = pinpad.New(pin.NewSetPrompt("New PIN", m.clock), m.theme)
		m.pad.Hint = "esc back"
		m.pad.SetSize(m.width, m.height)
		return nil
	}
	err := m.sess.ChangePIN(m.oldPIN, m.pad.Prompt.Value())
	m.toMenu()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.status = "PIN changed"
	return nil
}

// typedConfirmer accepts only a literal "yes".
type typedConfirmer string

func (t typedConfirmer) Confirm(string) (bool, error) {
	return strings.EqualFold(strings.TrimSpace(string(t)), "yes"), nil
}

func (m *Model) updateConfirm(key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		m.toMenu()
		return nil
	case "enter":
		c := typedConfirmer(m.input.Value())
		var err error
		if m.reset == itemResetApp {
			err = m.sess.ResetApp(c)
		} else {
			err = m.sess.ResetSecurity(c)
		}
		if err != nil {
			m.toMenu()
			if errors.Is(err, session.ErrNotConfirmed) {
				m.status = "Reset cancelled"
			} else {
				m.err = err.Error()
			}
			return nil
		}
		m.status = "Reset complete"
		return m.closeCmd()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return cmd
}

// AutoLockLabel names a duration the way the menu shows it.
func AutoLockLabel(d time.Duration) string {
	switch d {
	case 0:
		return "Never"
	case time.Minute:
		return "1 Minute"
	case 5 * time.Minute:
		return "5 Minutes"
	case 15 * time.Minute:
		return "15 Minutes"
	default:
		return d.String()
	}
}

func nextAutoLock(cur time.Duration) time.Duration {
	choices := session.AutoLockChoices
	for i, c := range choices {
		if c == cur {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View renders the overlay, or nothing when closed.
func (m *Model) View() string {
	if !m.active {
		return ""
	}
	if m.pad != nil {
		return m.pad.View()
	}
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	lines := []string{m.theme.Modal.Title.Render("Settings"), ""}
	if m.stage == stageConfirmReset {
		prompt := session.ResetSecurityPrompt
		if m.reset == itemResetApp {
			prompt = session.ResetAppPrompt
		}
		lines = append(lines,
			m.theme.Modal.Body.Width(52).Render(prompt),
			"",
			m.input.View(),
			"",
			m.theme.Footer.Help.Render("enter confirm · esc cancel"),
		)
	} else {
		snap := m.sess.Snapshot()
		labels := []string{
			"Change PIN",
			fmt.Sprintf("Auto-lock Timer: %s", AutoLockLabel(snap.AutoLock)),
			fmt.Sprintf("Enable Biometrics: %s", onOff(snap.Biometric)),
			"Reset Security",
			"Reset App",
		}
		for i, label := range labels {
			style, marker := m.theme.List.Item, "  "
			if item(i) == m.cursor {
				style, marker = m.theme.List.Selected, "→ "
			}
			lines = append(lines, style.Render(marker+label))
		}
		lines = append(lines, "", m.theme.Footer.Help.Render("↑/↓ move · enter select · esc close"))
	}
	if m.err != "" {
		lines = append(lines, "", m.theme.Modal.Error.Render(m.err))
	} else if m.status != "" {
		lines = append(lines, "", m.theme.Footer.Status.Render(m.status))
	}

	panel := m.theme.Modal.Frame.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
