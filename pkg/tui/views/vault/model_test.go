package vault

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/tui/theme"
	gate "tableflip.dev/beho/pkg/vault"
)

type hiddenNotes []note.Note

func (h hiddenNotes) Hidden(context.Context) ([]note.Note, error) { return h, nil }

func press(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Text: s, Code: rune(s[0])})
	return cmd
}

func newVault() *Model {
	g := gate.NewGate(func(a string) bool { return a == "2580" }, hiddenNotes{
		{ID: "note_secret", Title: "diary", Hidden: true},
	})
	return New(context.Background(), g, theme.Default())
}

func TestVaultSelectAndReprompt(t *testing.T) {
	m := newVault()
	m.Open()
	if !strings.Contains(m.View(), "Enter Vault PIN") {
		t.Fatalf("vault did not open on the prompt")
	}

	for _, d := range []string{"2", "5", "8", "0"} {
		press(m, d)
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(m.View(), "diary") {
		t.Fatalf("hidden notes not listed after unlock")
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected selection command")
	}
	sel, ok := cmd().(SelectedMsg)
	if !ok || sel.ID != "note_secret" {
		t.Fatalf("selection = %#v", cmd())
	}
	if m.IsOpen() || m.View() != "" {
		t.Fatalf("vault still open after selection")
	}

	m.Open()
	if !strings.Contains(m.View(), "Enter Vault PIN") {
		t.Fatalf("reopened vault skipped the prompt")
	}
}

func TestVaultWrongPINAndEscape(t *testing.T) {
	m := newVault()
	m.Open()
	for _, d := range []string{"1", "1", "1", "1"} {
		press(m, d)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected redraw command after rejection")
	}
	if !strings.Contains(m.View(), "Incorrect PIN. Try again.") {
		t.Fatalf("error not shown")
	}

	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(ClosedMsg); !ok {
		t.Fatalf("esc did not close")
	}
	if m.IsOpen() {
		t.Fatalf("vault still open")
	}
}
