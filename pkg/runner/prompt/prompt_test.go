package prompt

import (
	"bytes"
	"errors"
	"testing"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

// feed replaces the terminal with a scripted sequence of PIN entries.
func feed(t *testing.T, entries ...string) *bytes.Buffer {
	t.Helper()
	oldRead, oldTTY, oldOut := readPassword, isTerminal, out
	t.Cleanup(func() { readPassword, isTerminal, out = oldRead, oldTTY, oldOut })

	buf := &bytes.Buffer{}
	out = buf
	isTerminal = func() bool { return true }
	readPassword = func(int) ([]byte, error) {
		if len(entries) == 0 {
			return nil, errors.New("no more input")
		}
		next := entries[0]
		entries = entries[1:]
		return []byte(next), nil
	}
	return buf
}

func lockedSession(t *testing.T) *session.Manager {
	t.Helper()
	st := store.NewMemory()
	setup := session.NewManager(st)
	_ = setup.Load()
	if err := setup.CompleteEnrollment(enroll.Result{
		Profile: enroll.Profile{FirstName: "Ada", LastName: "Lovelace", Age: "36"},
		PIN:     "1234",
	}); err != nil {
		t.Fatalf("CompleteEnrollment: %v", err)
	}
	setup.Close()

	sess := session.NewManager(st)
	t.Cleanup(sess.Close)
	if err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return sess
}

func TestUnlockRetries(t *testing.T) {
	buf := feed(t, "0000", "1234")
	sess := lockedSession(t)
	if err := Unlock(sess); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if sess.State() != session.StateUnlocked {
		t.Fatalf("state = %v", sess.State())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Incorrect PIN. Try again.")) {
		t.Fatalf("missing retry message: %q", buf.String())
	}
}

func TestUnlockGivesUp(t *testing.T) {
	feed(t, "0000", "1111", "2222", "1234")
	sess := lockedSession(t)
	if err := Unlock(sess); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("err = %v", err)
	}
	if sess.State() != session.StateLocked {
		t.Fatalf("state = %v", sess.State())
	}
}

func TestUnlockWithoutTerminal(t *testing.T) {
	feed(t)
	isTerminal = func() bool { return false }
	sess := lockedSession(t)
	if err := Unlock(sess); !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewPIN(t *testing.T) {
	feed(t, "12", "2580", "2581", "2580", "2580")
	got, err := NewPIN()
	if err != nil {
		t.Fatalf("NewPIN: %v", err)
	}
	if got != "2580" {
		t.Fatalf("pin = %q", got)
	}
}

func TestConfirmerAssume(t *testing.T) {
	feed(t)
	isTerminal = func() bool { return false }
	ok, err := Confirmer{Assume: true}.Confirm(session.ResetAppPrompt)
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v", ok, err)
	}
	if _, err := (Confirmer{}).Confirm(session.ResetAppPrompt); !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("err = %v", err)
	}
}
