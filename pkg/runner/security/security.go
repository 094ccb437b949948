// Package security holds the CLI runners that change PIN, auto-lock,
// biometric and reset settings. Each one unlocks the session first.
package security

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/beho/pkg/printers"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/timeutil"
)

// Unlocker brings a locked session to unlocked, typically by asking for the
// PIN.
type Unlocker func(*session.Manager) error

func unlocker(u Unlocker) Unlocker {
	if u == nil {
		return prompt.Unlock
	}
	return u
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}

var ok = color.New(color.FgGreen)

// ChangePIN replaces the PIN after checking the current one.
type ChangePIN struct {
	Session *session.Manager
	// Current and Next read the PINs; they default to terminal prompts.
	Current func(label string) (string, error)
	Next    func() (string, error)
	Out     io.Writer
}

func (c *ChangePIN) Do(ctx context.Context) error {
	current, next := c.Current, c.Next
	if current == nil {
		current = prompt.PIN
	}
	if next == nil {
		next = prompt.NewPIN
	}
	old, err := current("Current PIN")
	if err != nil {
		return err
	}
	// Unlock with the same entry so the user types it once.
	if c.Session.State() == session.StateLocked {
		if err := c.Session.Unlock(old); err != nil {
			return err
		}
	}
	code, err := next()
	if err != nil {
		return err
	}
	if err := c.Session.ChangePIN(old, code); err != nil {
		return err
	}
	_, _ = ok.Fprintln(output(c.Out), "PIN changed")
	return nil
}

// ParseAutoLock accepts never, a bare number of minutes, or a duration
// such as 90s, 15m or "1 hour".
func ParseAutoLock(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "never", "off", "0":
		return 0, nil
	}
	if mins, err := strconv.Atoi(s); err == nil && mins > 0 {
		return time.Duration(mins) * time.Minute, nil
	}
	d, err := timeutil.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", session.ErrInvalidDuration, err)
	}
	return d, nil
}

// AutoLock sets the inactivity timeout.
type AutoLock struct {
	Session  *session.Manager
	Duration time.Duration
	Unlock   Unlocker
	Out      io.Writer
}

func (a *AutoLock) Do(ctx context.Context) error {
	if err := unlocker(a.Unlock)(a.Session); err != nil {
		return err
	}
	if err := a.Session.SetAutoLock(a.Duration); err != nil {
		return err
	}
	_, _ = ok.Fprintf(output(a.Out), "Auto-lock: %s\n", printers.AutoLock(a.Duration))
	return nil
}

// Biometric records the biometrics preference.
type Biometric struct {
	Session *session.Manager
	Enabled bool
	Unlock  Unlocker
	Out     io.Writer
}

func (b *Biometric) Do(ctx context.Context) error {
	if err := unlocker(b.Unlock)(b.Session); err != nil {
		return err
	}
	if err := b.Session.SetBiometric(b.Enabled); err != nil {
		return err
	}
	state := "off"
	if b.Enabled {
		state = "on"
	}
	_, _ = ok.Fprintf(output(b.Out), "Biometrics %s\n", state)
	return nil
}

// Scope selects what a Reset erases.
type Scope string

const (
	ScopeSecurity Scope = "security"
	ScopeApp      Scope = "app"
)

// Reset erases security settings or all app data after confirmation.
type Reset struct {
	Session *session.Manager
	Scope   Scope
	Confirm session.Confirmer
	Unlock  Unlocker
	Out     io.Writer
}

func (r *Reset) Do(ctx context.Context) error {
	if err := unlocker(r.Unlock)(r.Session); err != nil {
		return err
	}
	confirm := r.Confirm
	if confirm == nil {
		confirm = prompt.Confirmer{}
	}
	var err error
	switch r.Scope {
	case ScopeSecurity:
		err = r.Session.ResetSecurity(confirm)
	case ScopeApp:
		err = r.Session.ResetApp(confirm)
	default:
		return fmt.Errorf("unknown reset scope %q, expected security or app", r.Scope)
	}
	if err != nil {
		return err
	}
	_, _ = ok.Fprintln(output(r.Out), "Reset complete. Run `beho enroll` to set up again.")
	return nil
}
