package commands

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/session"
)

func run(args ...string) (string, error) {
	cmd := New()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandTree(t *testing.T) {
	root := New()
	for _, path := range [][]string{
		{"ui"}, {"enroll"}, {"status"}, {"pin", "change"}, {"autolock"}, {"biometric"},
		{"reset"}, {"note", "add"}, {"note", "list"}, {"note", "hide"}, {"note", "unhide"},
		{"vault", "list"}, {"vault", "open"}, {"info"}, {"version"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("missing command %v: %v", path, err)
		}
	}
}

func TestHelpNamesRetryLimit(t *testing.T) {
	root := New()
	vault, _, err := root.Find([]string{"vault"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	for _, cmd := range []*cobra.Command{root, vault} {
		long := strings.Join(strings.Fields(cmd.Long), " ")
		if !strings.Contains(long, "retry limit per invocation, not a lockout") {
			t.Fatalf("%s help = %q", cmd.Name(), cmd.Long)
		}
	}
}

func TestAutoLockRejectsBadDuration(t *testing.T) {
	_, err := run("autolock", "soon")
	if !errors.Is(err, session.ErrInvalidDuration) {
		t.Fatalf("err = %v", err)
	}
}

func TestBiometricValidatesArgs(t *testing.T) {
	if _, err := run("biometric", "maybe"); err == nil {
		t.Fatalf("expected an argument error")
	}
}

func TestVersionShort(t *testing.T) {
	out, err := run("version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "dev") {
		t.Fatalf("output = %q", out)
	}
}
