package enroll

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

type script []string

func (s *script) next() (string, error) {
	if len(*s) == 0 {
		return "", errors.New("script exhausted")
	}
	v := (*s)[0]
	*s = (*s)[1:]
	return v, nil
}

func TestEnrollRetriesUntilValid(t *testing.T) {
	st := store.NewMemory()
	sess := session.NewManager(st)
	defer sess.Close()
	if err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	texts := script{"Ada", "Lovelace", "abc", "Ada", "Lovelace", "36"}
	pins := script{"12", "2580", "2581", "2580", "2580"}
	buf := &bytes.Buffer{}
	e := Enroll{
		Session: sess,
		Text:    func(string, func(string) error) (string, error) { return texts.next() },
		PIN:     func(string) (string, error) { return pins.next() },
		YesNo:   func(string) (bool, error) { return true, nil },
		Out:     buf,
	}
	if err := e.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}

	snap := sess.Snapshot()
	if snap.State != session.StateUnlocked || !snap.Biometric || snap.Profile.FirstName != "Ada" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !sess.Verify("2580") {
		t.Fatalf("pin not stored")
	}
	out := buf.String()
	for _, want := range []string{"Please enter a valid age.", "PIN must be 4 to 6 digits.", "PINs do not match. Please try again."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestEnrollRefusesWhenEnrolled(t *testing.T) {
	st := store.NewMemory()
	_ = store.SetJSON(st, store.KeyOnboardingComplete, true)
	sess := session.NewManager(st)
	defer sess.Close()
	_ = sess.Load()

	e := Enroll{Session: sess, Out: &bytes.Buffer{}}
	if err := e.Do(context.Background()); !errors.Is(err, session.ErrAlreadyEnrolled) {
		t.Fatalf("err = %v", err)
	}
}
