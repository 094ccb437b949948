// Package prompt holds the terminal input helpers shared by CLI runners.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/session"
)

// MaxAttempts bounds PIN retries in a single CLI invocation. Nothing is
// recorded between invocations, so it is not a lockout.
const MaxAttempts = 3

// RetryHelp describes MaxAttempts for command help.
var RetryHelp = fmt.Sprintf("A wrong PIN can be retried %d times per run (retry limit per invocation, not a lockout); run the command again to keep trying.", MaxAttempts)

var (
	// ErrNoTerminal is returned when input is needed but stdin is not a tty.
	ErrNoTerminal = errors.New("prompt: stdin is not a terminal")

	// ErrTooManyAttempts is returned after MaxAttempts wrong PINs.
	ErrTooManyAttempts = errors.New("prompt: retry limit per invocation reached")
)

// Test seams.
var (
	readPassword = term.ReadPassword
	isTerminal   = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	out io.Writer = color.Output
)

// Interactive reports whether stdin is attached to a terminal.
func Interactive() bool { return isTerminal() }

// PIN reads a PIN without echo. The value is normalized but not validated.
func PIN(label string) (string, error) {
	if !isTerminal() {
		return "", ErrNoTerminal
	}
	_, _ = fmt.Fprintf(out, "%s: ", label)
	raw, err := readPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("prompt: read pin: %w", err)
	}
	return pin.Normalize(string(raw)), nil
}

// NewPIN reads a PIN twice and validates it.
func NewPIN() (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		first, err := PIN("New PIN (4-6 digits)")
		if err != nil {
			return "", err
		}
		if err := pin.Validate(first); err != nil {
			warn("PIN must be 4 to 6 digits.")
			continue
		}
		second, err := PIN("Confirm PIN")
		if err != nil {
			return "", err
		}
		if first != second {
			warn("PINs do not match. Try again.")
			continue
		}
		return first, nil
	}
	return "", ErrTooManyAttempts
}

// Unlock asks for the PIN until sess unlocks. Sessions without a PIN are
// already unlocked and pass through.
func Unlock(sess *session.Manager) error {
	if sess.State() != session.StateLocked {
		return nil
	}
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, err := PIN("Enter PIN")
		if err != nil {
			return err
		}
		err = sess.Unlock(code)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, session.ErrWrongPIN):
			warn("Incorrect PIN. Try again.")
		default:
			return err
		}
	}
	return ErrTooManyAttempts
}

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }}: ",
	Valid:   "{{ . | green }}: ",
	Invalid: "{{ . | red }}: ",
	Success: "{{ . | bold }}: ",
}

// Text asks for a single line. validate may be nil.
func Text(label string, validate func(string) error) (string, error) {
	if !isTerminal() {
		return "", ErrNoTerminal
	}
	p := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Validate:  validate,
	}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

// YesNo asks a y/N question.
func YesNo(label string) (bool, error) {
	if !isTerminal() {
		return false, ErrNoTerminal
	}
	p := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Confirmer gates destructive session operations behind a y/N prompt.
// Assume skips the question.
type Confirmer struct {
	Assume bool
}

var _ session.Confirmer = Confirmer{}

func (c Confirmer) Confirm(question string) (bool, error) {
	if c.Assume {
		return true, nil
	}
	_, _ = fmt.Fprintln(out, color.New(color.FgYellow).Sprint(question))
	return YesNo("Continue")
}

func warn(msg string) {
	_, _ = color.New(color.FgRed).Fprintln(out, msg)
}
