package pinpad

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/jonboulle/clockwork"

	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/tui/theme"
)

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Text: s, Code: rune(s[0])}
}

func TestHandleKeyUnlocks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := pin.NewEnterPrompt("", func(a string) bool { return a == "4321" }, clock)
	m := New(p, theme.Default())

	for _, d := range []string{"4", "3", "2", "9"} {
		m.HandleKey(key(d))
	}
	m.HandleKey(tea.KeyPressMsg{Code: tea.KeyBackspace})
	m.HandleKey(key("x"))
	m.HandleKey(key("1"))
	if p.Len() != 4 {
		t.Fatalf("len = %d", p.Len())
	}
	res, cmd := m.HandleKey(tea.KeyPressMsg{Code: tea.KeyEnter})
	if res != pin.ResultAccepted || cmd != nil {
		t.Fatalf("result = %v", res)
	}
}

func TestHandleKeyRejectSchedulesRedraw(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := pin.NewEnterPrompt("", func(string) bool { return false }, clock)
	m := New(p, theme.Default())

	for _, d := range []string{"1", "1", "1", "1"} {
		m.HandleKey(key(d))
	}
	res, cmd := m.HandleKey(tea.KeyPressMsg{Code: tea.KeyEnter})
	if res != pin.ResultRejected || cmd == nil {
		t.Fatalf("result = %v cmd = %v", res, cmd)
	}
	if !strings.Contains(m.View(), "Incorrect PIN. Try again.") {
		t.Fatalf("error text not rendered")
	}
	clock.Advance(pin.ErrorDisplay)
	if !strings.Contains(m.View(), "Enter your PIN to unlock") {
		t.Fatalf("subtitle did not revert")
	}
}

func TestDots(t *testing.T) {
	out := Dots(theme.Default(), 2)
	if strings.Count(out, "●") != 2 || strings.Count(out, "○") != pin.MaxLength-2 {
		t.Fatalf("dots = %q", out)
	}
}
