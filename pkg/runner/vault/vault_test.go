package vault

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

func setup(t *testing.T) (*session.Manager, *note.Service, string) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	sess := session.NewManager(st)
	t.Cleanup(sess.Close)
	_ = sess.Load()
	if err := sess.CompleteEnrollment(enroll.Result{
		Profile: enroll.Profile{FirstName: "Ada", LastName: "Lovelace", Age: "36"},
		PIN:     "1234",
	}); err != nil {
		t.Fatalf("CompleteEnrollment: %v", err)
	}
	svc := &note.Service{Store: st}
	n, _ := svc.Create(ctx, "diary", "dear diary")
	_, _ = svc.SetHidden(ctx, n.ID, true)
	_, _ = svc.Create(ctx, "groceries", "")
	return sess, svc, n.ID
}

func pins(codes ...string) func(string) (string, error) {
	return func(string) (string, error) {
		if len(codes) == 0 {
			return "", errors.New("no input")
		}
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
}

func noop(*session.Manager) error { return nil }

func TestVaultListsOnlyHidden(t *testing.T) {
	sess, svc, _ := setup(t)
	buf := &bytes.Buffer{}
	v := Vault{Session: sess, Notes: svc, Unlock: noop, PIN: pins("0000", "1234"), Out: buf}
	if err := v.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "diary") || strings.Contains(out, "groceries") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "Incorrect PIN. Try again.") {
		t.Fatalf("missing retry message: %q", out)
	}
}

func TestVaultOpen(t *testing.T) {
	sess, svc, id := setup(t)
	buf := &bytes.Buffer{}
	v := Vault{Session: sess, Notes: svc, Unlock: noop, PIN: pins("1234"), Open: id, Out: buf}
	if err := v.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(buf.String(), "dear diary") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestVaultGivesUp(t *testing.T) {
	sess, svc, _ := setup(t)
	v := Vault{Session: sess, Notes: svc, Unlock: noop, PIN: pins("0000", "1111", "2222"), Out: &bytes.Buffer{}}
	if err := v.Do(context.Background()); !errors.Is(err, prompt.ErrTooManyAttempts) {
		t.Fatalf("err = %v", err)
	}
}
