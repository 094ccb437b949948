package security

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

func lockedSession(t *testing.T) (*session.Manager, *store.Memory) {
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
	return sess, st
}

func unlockWith(code string) Unlocker {
	return func(s *session.Manager) error {
		if s.State() != session.StateLocked {
			return nil
		}
		return s.Unlock(code)
	}
}

func TestParseAutoLock(t *testing.T) {
	tests := map[string]time.Duration{
		"never":  0,
		"0":      0,
		"1m":     time.Minute,
		"1 hour": time.Hour,
		"15":     15 * time.Minute,
		"90s":    90 * time.Second,
	}
	for in, want := range tests {
		got, err := ParseAutoLock(in)
		if err != nil || got != want {
			t.Fatalf("ParseAutoLock(%q) = %v, %v", in, got, err)
		}
	}
	for _, in := range []string{"soon", "-1m", "-3"} {
		if _, err := ParseAutoLock(in); !errors.Is(err, session.ErrInvalidDuration) {
			t.Fatalf("ParseAutoLock(%q) err = %v", in, err)
		}
	}
}

func TestAutoLockNeedsPIN(t *testing.T) {
	sess, st := lockedSession(t)
	a := AutoLock{Session: sess, Duration: time.Minute, Unlock: unlockWith("0000"), Out: &bytes.Buffer{}}
	if err := a.Do(context.Background()); !errors.Is(err, session.ErrWrongPIN) {
		t.Fatalf("err = %v", err)
	}

	a.Unlock = unlockWith("1234")
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	ms, _ := store.GetInt64(st, store.KeyAutoLockDuration, -1)
	if ms != 60000 {
		t.Fatalf("stored = %d", ms)
	}
}

func TestChangePINUsesCurrentEntryToUnlock(t *testing.T) {
	sess, _ := lockedSession(t)
	c := ChangePIN{
		Session: sess,
		Current: func(string) (string, error) { return "1234", nil },
		Next:    func() (string, error) { return "2580", nil },
		Out:     &bytes.Buffer{},
	}
	if err := c.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !sess.Verify("2580") || sess.Verify("1234") {
		t.Fatalf("pin not replaced")
	}
}

func TestResetDeclined(t *testing.T) {
	sess, st := lockedSession(t)
	r := Reset{
		Session: sess,
		Scope:   ScopeApp,
		Unlock:  unlockWith("1234"),
		Confirm: session.ConfirmFunc(func(string) (bool, error) { return false, nil }),
		Out:     &bytes.Buffer{},
	}
	if err := r.Do(context.Background()); !errors.Is(err, session.ErrNotConfirmed) {
		t.Fatalf("err = %v", err)
	}
	if !st.Has(store.KeyPIN) {
		t.Fatalf("declined reset erased data")
	}
}

func TestResetSecurityConfirmed(t *testing.T) {
	sess, st := lockedSession(t)
	r := Reset{
		Session: sess,
		Scope:   ScopeSecurity,
		Unlock:  unlockWith("1234"),
		Confirm: session.ConfirmFunc(func(string) (bool, error) { return true, nil }),
		Out:     &bytes.Buffer{},
	}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if st.Has(store.KeyPIN) {
		t.Fatalf("pin survived reset")
	}
}
