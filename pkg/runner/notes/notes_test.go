package notes

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

func setup(t *testing.T) (*session.Manager, *note.Service) {
	t.Helper()
	st := store.NewMemory()
	boot := session.NewManager(st)
	_ = boot.Load()
	if err := boot.CompleteEnrollment(enroll.Result{
		Profile: enroll.Profile{FirstName: "Ada", LastName: "Lovelace", Age: "36"},
		PIN:     "1234",
	}); err != nil {
		t.Fatalf("CompleteEnrollment: %v", err)
	}
	boot.Close()

	sess := session.NewManager(st)
	t.Cleanup(sess.Close)
	if err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return sess, &note.Service{Store: st}
}

func pinIs(code string) Unlocker {
	return func(s *session.Manager) error {
		if s.State() != session.StateLocked {
			return nil
		}
		return s.Unlock(code)
	}
}

func TestAddRequiresUnlock(t *testing.T) {
	sess, svc := setup(t)
	ctx := context.Background()

	a := Add{Session: sess, Notes: svc, Unlock: pinIs("9999"), Title: "x", Out: &bytes.Buffer{}}
	if err := a.Do(ctx); !errors.Is(err, session.ErrWrongPIN) {
		t.Fatalf("err = %v", err)
	}
	if all, _ := svc.List(ctx); len(all) != 0 {
		t.Fatalf("note written while locked: %+v", all)
	}
}

func TestAddHiddenWithReminder(t *testing.T) {
	sess, svc := setup(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	a := Add{Session: sess, Notes: svc, Unlock: pinIs("1234"), Title: " diary ", Hidden: true, Remind: &at, Out: &bytes.Buffer{}}
	if err := a.Do(ctx); err != nil {
		t.Fatalf("Do: %v", err)
	}
	hidden, _ := svc.Hidden(ctx)
	if len(hidden) != 1 || hidden[0].Title != "diary" || hidden[0].Reminder == nil || !hidden[0].Reminder.Equal(at) {
		t.Fatalf("hidden = %+v", hidden)
	}

	buf := &bytes.Buffer{}
	l := List{Session: sess, Notes: svc, Out: buf}
	if err := l.Do(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Contains(buf.String(), "diary") {
		t.Fatalf("hidden note listed: %q", buf.String())
	}
}

func TestShowRefusesHidden(t *testing.T) {
	sess, svc := setup(t)
	ctx := context.Background()
	_ = sess.Unlock("1234")
	n, _ := svc.Create(ctx, "diary", "secret")
	_, _ = svc.SetHidden(ctx, n.ID, true)

	s := Show{Session: sess, Notes: svc, ID: n.ID, Out: &bytes.Buffer{}}
	if err := s.Do(ctx); !errors.Is(err, note.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	h := SetHidden{Session: sess, Notes: svc, ID: n.ID, Hidden: false, Out: &bytes.Buffer{}}
	if err := h.Do(ctx); err != nil {
		t.Fatalf("SetHidden: %v", err)
	}
	buf := &bytes.Buffer{}
	s.Out = buf
	if err := s.Do(ctx); err != nil || !strings.Contains(buf.String(), "secret") {
		t.Fatalf("Show = %q, %v", buf.String(), err)
	}
}
