// Package notes holds the CLI runners for everyday notes.
package notes

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/printers"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
)

// Unlocker brings a locked session to unlocked.
type Unlocker func(*session.Manager) error

func unlock(sess *session.Manager, u Unlocker) error {
	if u == nil {
		u = prompt.Unlock
	}
	if err := u(sess); err != nil {
		return err
	}
	if sess.State() != session.StateUnlocked {
		return fmt.Errorf("notes: session is %s", sess.State())
	}
	return nil
}

// Add creates a note.
type Add struct {
	Session *session.Manager
	Notes   *note.Service
	Unlock  Unlocker

	Title   string
	Content string
	Hidden  bool
	// Remind, when set, schedules a reminder.
	Remind *time.Time
	Out    io.Writer
}

func (a *Add) Do(ctx context.Context) error {
	if err := unlock(a.Session, a.Unlock); err != nil {
		return err
	}
	n, err := a.Notes.Create(ctx, strings.TrimSpace(a.Title), a.Content)
	if err != nil {
		return err
	}
	if a.Hidden {
		if n, err = a.Notes.SetHidden(ctx, n.ID, true); err != nil {
			return err
		}
	}
	if a.Remind != nil {
		if n, err = a.Notes.SetReminder(ctx, n.ID, *a.Remind); err != nil {
			return err
		}
	}
	pp := printers.PrettyPrint{ShowID: true, Out: a.Out}
	pp.Notes(*n)
	return nil
}

// List prints the visible notes. Hidden notes are only listed through the
// vault.
type List struct {
	Session *session.Manager
	Notes   *note.Service
	Unlock  Unlocker
	ShowID  bool
	Out     io.Writer
}

func (l *List) Do(ctx context.Context) error {
	if err := unlock(l.Session, l.Unlock); err != nil {
		return err
	}
	visible, err := l.Notes.Visible(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: l.ShowID, Out: l.Out}
	pp.TitleWithCount("Notes", len(visible))
	pp.Notes(visible...)
	return nil
}

// Show prints one visible note with its content.
type Show struct {
	Session *session.Manager
	Notes   *note.Service
	Unlock  Unlocker
	ID      string
	Out     io.Writer
}

func (s *Show) Do(ctx context.Context) error {
	if err := unlock(s.Session, s.Unlock); err != nil {
		return err
	}
	n, err := s.Notes.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	if n.Hidden {
		return fmt.Errorf("%w: %s is in the vault", note.ErrNotFound, s.ID)
	}
	pp := printers.PrettyPrint{ShowID: true, Out: s.Out}
	pp.Note(*n)
	return nil
}

// SetHidden moves a note into or out of the vault.
type SetHidden struct {
	Session *session.Manager
	Notes   *note.Service
	Unlock  Unlocker
	ID      string
	Hidden  bool
	Out     io.Writer
}

func (h *SetHidden) Do(ctx context.Context) error {
	if err := unlock(h.Session, h.Unlock); err != nil {
		return err
	}
	n, err := h.Notes.SetHidden(ctx, h.ID, h.Hidden)
	if err != nil {
		return err
	}
	out := h.Out
	if out == nil {
		out = color.Output
	}
	msg := "Restored from vault"
	if n.Hidden {
		msg = "Moved to vault"
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "%s: %s\n", msg, n.DisplayTitle())
	return nil
}

// Delete removes a visible note.
type Delete struct {
	Session *session.Manager
	Notes   *note.Service
	Unlock  Unlocker
	ID      string
	Out     io.Writer
}

func (d *Delete) Do(ctx context.Context) error {
	if err := unlock(d.Session, d.Unlock); err != nil {
		return err
	}
	if err := d.Notes.Delete(ctx, d.ID); err != nil {
		return err
	}
	out := d.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "Deleted %s\n", d.ID)
	return nil
}
