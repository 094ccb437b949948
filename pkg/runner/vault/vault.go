// Package vault lists and opens hidden notes from the CLI.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/printers"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
	gate "tableflip.dev/beho/pkg/vault"
)

// Vault asks for the vault PIN on every run, even right after the session
// itself was unlocked.
type Vault struct {
	Session *session.Manager
	Notes   *note.Service

	// Unlock unlocks the session; PIN reads the vault PIN.
	Unlock func(*session.Manager) error
	PIN    func(label string) (string, error)

	// Open, when set, prints that note instead of the list.
	Open string
	Out  io.Writer
}

func (v *Vault) Do(ctx context.Context) error {
	unlock, readPIN := v.Unlock, v.PIN
	if unlock == nil {
		unlock = prompt.Unlock
	}
	if readPIN == nil {
		readPIN = prompt.PIN
	}
	out := v.Out
	if out == nil {
		out = color.Output
	}

	if err := unlock(v.Session); err != nil {
		return err
	}
	if v.Session.State() != session.StateUnlocked {
		return fmt.Errorf("vault: session is %s", v.Session.State())
	}

	g := gate.NewGate(v.Session.Verify, v.Notes)
	g.Open()
	defer g.Close()

	var err error
	for attempt := 0; attempt < prompt.MaxAttempts; attempt++ {
		var code string
		if code, err = readPIN("Enter Vault PIN"); err != nil {
			return err
		}
		if err = g.Unlock(code); err == nil {
			break
		}
		if !errors.Is(err, gate.ErrWrongPIN) {
			return err
		}
		_, _ = color.New(color.FgRed).Fprintln(out, "Incorrect PIN. Try again.")
	}
	if err != nil {
		return prompt.ErrTooManyAttempts
	}

	hidden, err := g.Notes(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: out}
	if v.Open == "" {
		pp.TitleWithCount("Hidden Notes Vault", len(hidden))
		pp.Notes(hidden...)
		return nil
	}
	for _, n := range hidden {
		if n.ID != v.Open {
			continue
		}
		if _, err := g.Select(n.ID); err != nil {
			return err
		}
		pp.Note(n)
		return nil
	}
	return fmt.Errorf("%w: %s", note.ErrNotFound, v.Open)
}
