// Package vault is the hidden-notes overlay.
package vault

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/tui/theme"
	"tableflip.dev/beho/pkg/tui/ui"
	"tableflip.dev/beho/pkg/tui/views/pinpad"
	gate "tableflip.dev/beho/pkg/vault"
)

var _ ui.Overlay = (*Model)(nil)

// SelectedMsg reports the note picked from the vault. The vault is closed.
type SelectedMsg struct {
	ID string
}

// ClosedMsg reports that the vault was dismissed.
type ClosedMsg struct{}

// Model shows the gate's prompt until it unlocks, then the hidden notes.
type Model struct {
	ctx    context.Context
	gate   *gate.Gate
	pad    *pinpad.Model
	notes  []note.Note
	cursor int
	err    string

	width  int
	height int
	theme  theme.Theme
}

// New returns the overlay for g.
func New(ctx context.Context, g *gate.Gate, th theme.Theme) *Model {
	pad := pinpad.New(g.Prompt(), th)
	pad.Hint = "esc close"
	pad.Submit = func() pin.Result {
		res, _ := g.Submit()
		return res
	}
	return &Model{ctx: ctx, gate: g, pad: pad, theme: th}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pad.SetSize(width, height)
}

// Open shows the vault, always locked.
func (m *Model) Open() {
	m.gate.Open()
	m.notes = nil
	m.cursor = 0
	m.err = ""
}

func (m *Model) IsOpen() bool { return m.gate.IsOpen() }

// Close dismisses the vault without a selection.
func (m *Model) Close() {
	m.gate.Close()
	m.notes = nil
}

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !m.gate.IsOpen() {
		return m, nil
	}
	if key.String() == "esc" {
		m.Close()
		return m, func() tea.Msg { return ClosedMsg{} }
	}

	if !m.gate.Unlocked() {
		res, cmd := m.pad.HandleKey(key)
		if res == pin.ResultAccepted {
			m.load()
		}
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.notes)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.notes) == 0 {
			return m, nil
		}
		id, err := m.gate.Select(m.notes[m.cursor].ID)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.notes = nil
		return m, func() tea.Msg { return SelectedMsg{ID: id} }
	}
	return m, nil
}

func (m *Model) load() {
	notes, err := m.gate.Notes(m.ctx)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.notes = notes
	m.cursor = 0
	m.err = ""
}

// View renders the overlay panel, or nothing when closed.
func (m *Model) View() string {
	if !m.gate.IsOpen() {
		return ""
	}
	if !m.gate.Unlocked() {
		return m.pad.View()
	}
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	limit := uint(width - 16)
	if width < 40 {
		limit = 24
	}

	lines := []string{m.theme.Modal.Title.Render("Hidden Notes Vault"), ""}
	if len(m.notes) == 0 {
		lines = append(lines, m.theme.List.Empty.Render("Your hidden notes will appear here."))
	}
	for i, n := range m.notes {
		style, marker := m.theme.List.Item, "  "
		if i == m.cursor {
			style, marker = m.theme.List.Selected, "→ "
		}
		lines = append(lines, style.Render(marker+truncate.StringWithTail(n.DisplayTitle(), limit, "…")))
		lines = append(lines, m.theme.List.Meta.Render("    Last updated: "+n.UpdatedAt.String()))
	}
	if m.err != "" {
		lines = append(lines, "", m.theme.Modal.Error.Render(m.err))
	}
	lines = append(lines, "", m.theme.Footer.Help.Render("↑/↓ move · enter open · esc close"))

	panel := m.theme.Modal.Frame.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
