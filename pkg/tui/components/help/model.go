// Package help renders the key reference overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/beho/pkg/tui/theme"
	"tableflip.dev/beho/pkg/tui/ui"
)

var _ ui.Component = (*Model)(nil)

// Binding is one row of the reference.
type Binding struct {
	Keys        string
	Description string
}

// Section groups bindings under a heading.
type Section struct {
	Title    string
	Bindings []Binding
}

// Sections is the reference shown by the overlay.
var Sections = []Section{
	{Title: "Notes", Bindings: []Binding{
		{"j / k, ↑ / ↓", "move between notes"},
		{"n", "new note"},
		{"h", "move the selected note into or out of the vault"},
		{"esc", "close the open note"},
	}},
	{Title: "Security", Bindings: []Binding{
		{"v", "open the hidden notes vault (asks for your PIN)"},
		{"s", "settings: PIN, auto-lock, biometrics, reset"},
		{"L", "lock now"},
	}},
	{Title: "General", Bindings: []Binding{
		{"?", "toggle this help"},
		{"q, ctrl+c", "quit"},
	}},
}

// Model shows Sections inside a bordered, scrollable viewport.
type Model struct {
	viewport viewport.Model
	width    int
	height   int
	theme    theme.Theme
}

// New constructs a help overlay sized to the provided bounds.
func New(th theme.Theme, width, height int) *Model {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	vp.MouseWheelEnabled = true
	m := &Model{viewport: vp, theme: th}
	m.SetSize(width, height)
	return m
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards scrolling to the viewport.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// View renders the reference centered in the available space.
func (m *Model) View() string {
	panel := m.theme.Modal.Frame.Render(m.viewport.View())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// SetSize fits the panel into width x height and re-renders the content.
func (m *Model) SetSize(width, height int) {
	minWidth, minHeight := 32, 8
	if width < minWidth {
		width = minWidth
	}
	if height < minHeight {
		height = minHeight
	}
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height

	frameX := m.theme.Modal.Frame.GetHorizontalFrameSize()
	frameY := m.theme.Modal.Frame.GetVerticalFrameSize()
	innerWidth := max(min(width, 72)-frameX, 1)
	content := m.render(innerWidth)
	innerHeight := max(min(height-frameY, lipgloss.Height(content)), 1)

	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(innerHeight)
	m.viewport.SetContent(content)
	m.viewport.SetYOffset(0)
}

func (m *Model) render(width int) string {
	keyWidth := 0
	for _, s := range Sections {
		for _, b := range s.Bindings {
			keyWidth = max(keyWidth, lipgloss.Width(b.Keys))
		}
	}
	descWidth := max(width-keyWidth-2, 10)

	var lines []string
	lines = append(lines, m.theme.Modal.Title.Render("Keys"), "")
	for i, s := range Sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.theme.Panel.Title.Render(s.Title))
		for _, b := range s.Bindings {
			desc := strings.Split(wordwrap.String(b.Description, descWidth), "\n")
			key := b.Keys + strings.Repeat(" ", keyWidth-lipgloss.Width(b.Keys))
			lines = append(lines, m.theme.List.Selected.Render(key)+"  "+desc[0])
			for _, cont := range desc[1:] {
				lines = append(lines, strings.Repeat(" ", keyWidth+2)+cont)
			}
		}
	}
	lines = append(lines, "", m.theme.Footer.Help.Render("esc or ? to close"))
	return strings.Join(lines, "\n")
}
