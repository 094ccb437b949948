// Package status prints the session state.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/printers"
	"tableflip.dev/beho/pkg/session"
)

// Status reports the snapshot without asking for the PIN. Note counts are
// included, titles are not.
type Status struct {
	Session *session.Manager
	Notes   *note.Service
	JSON    bool
	Out     io.Writer
}

type report struct {
	session.Snapshot
	AutoLockMillis int64 `json:"autoLockMillis"`
	Notes          int   `json:"notes"`
	Hidden         int   `json:"hidden"`
}

func (s *Status) Do(ctx context.Context) error {
	out := s.Out
	if out == nil {
		out = color.Output
	}

	snap := s.Session.Snapshot()
	all, err := s.Notes.List(ctx)
	if err != nil {
		return err
	}
	hidden := 0
	for _, n := range all {
		if n.Hidden {
			hidden++
		}
	}

	if s.JSON {
		b, err := json.Marshal(report{
			Snapshot:       snap,
			AutoLockMillis: snap.AutoLock.Milliseconds(),
			Notes:          len(all),
			Hidden:         hidden,
		})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil
	}

	pp := printers.PrettyPrint{Out: out}
	pp.Snapshot(snap, len(all), hidden)
	return nil
}
