package status

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

func TestStatusJSON(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	sess := session.NewManager(st)
	defer sess.Close()
	_ = sess.Load()
	if err := sess.CompleteEnrollment(enroll.Result{
		Profile: enroll.Profile{FirstName: "Ada", LastName: "Lovelace", Age: "36"},
		PIN:     "1234",
	}); err != nil {
		t.Fatalf("CompleteEnrollment: %v", err)
	}
	notes := &note.Service{Store: st}
	n, _ := notes.Create(ctx, "a", "")
	_, _ = notes.Create(ctx, "b", "")
	if _, err := notes.SetHidden(ctx, n.ID, true); err != nil {
		t.Fatalf("SetHidden: %v", err)
	}

	buf := &bytes.Buffer{}
	s := Status{Session: sess, Notes: notes, JSON: true, Out: buf}
	if err := s.Do(ctx); err != nil {
		t.Fatalf("Do: %v", err)
	}

	var got struct {
		Enrolled       bool  `json:"enrolled"`
		HasPIN         bool  `json:"hasPin"`
		AutoLockMillis int64 `json:"autoLockMillis"`
		Notes          int   `json:"notes"`
		Hidden         int   `json:"hidden"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if !got.Enrolled || !got.HasPIN || got.AutoLockMillis != 300000 || got.Notes != 2 || got.Hidden != 1 {
		t.Fatalf("report = %+v", got)
	}
}
