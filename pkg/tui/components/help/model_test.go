package help

import (
	"strings"
	"testing"

	"tableflip.dev/beho/pkg/tui/theme"
)

func TestViewListsBindings(t *testing.T) {
	m := New(theme.Default(), 100, 40)
	view := m.View()
	for _, want := range []string{"Keys", "lock now", "hidden notes vault", "esc or ? to close"} {
		if !strings.Contains(view, want) {
			t.Fatalf("missing %q in help view:\n%s", want, view)
		}
	}
}

func TestSetSizeClampsToMinimum(t *testing.T) {
	m := New(theme.Default(), 4, 2)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("size = %dx%d", m.width, m.height)
	}
}
