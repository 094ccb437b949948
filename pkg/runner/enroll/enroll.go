// Package enroll walks a first-time user through enrollment on the CLI.
package enroll

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	flow "tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
)

// Enroll collects a profile, a confirmed PIN and the biometrics choice, then
// commits them in one step.
type Enroll struct {
	Session *session.Manager

	// Input hooks, defaulting to the terminal prompts.
	Text  func(label string, validate func(string) error) (string, error)
	PIN   func(label string) (string, error)
	YesNo func(label string) (bool, error)
	Out   io.Writer
}

func (e *Enroll) defaults() {
	if e.Text == nil {
		e.Text = prompt.Text
	}
	if e.PIN == nil {
		e.PIN = prompt.PIN
	}
	if e.YesNo == nil {
		e.YesNo = prompt.YesNo
	}
	if e.Out == nil {
		e.Out = color.Output
	}
}

func (e *Enroll) Do(ctx context.Context) error {
	e.defaults()
	if e.Session.State() != session.StateOnboarding {
		return session.ErrAlreadyEnrolled
	}

	_, _ = color.New(color.Bold).Fprintln(e.Out, "Welcome to Beho")
	f := flow.New()

	for f.Step() == flow.StepProfile {
		first, err := e.Text("First name", nil)
		if err != nil {
			return err
		}
		last, err := e.Text("Last name", nil)
		if err != nil {
			return err
		}
		age, err := e.Text("Age", nil)
		if err != nil {
			return err
		}
		if err := f.SubmitProfile(first, last, age); err != nil {
			e.warn(flow.Message(err))
		}
	}

	for f.Step() == flow.StepCreatePIN || f.Step() == flow.StepConfirmPIN {
		label := "Create your PIN (4-6 digits)"
		if f.Step() == flow.StepConfirmPIN {
			label = "Confirm your PIN"
		}
		code, err := e.PIN(label)
		if err != nil {
			return err
		}
		if err := pin.Validate(code); err != nil {
			e.warn(flow.Message(err))
			continue
		}
		for _, r := range code {
			f.Press(r)
		}
		if err := f.SubmitPIN(); err != nil {
			e.warn(flow.Message(err))
		}
	}

	bio, err := e.YesNo("Enable biometrics")
	if err != nil {
		return err
	}
	res, err := f.ChooseBiometrics(bio)
	if err != nil {
		return err
	}
	if err := e.Session.CompleteEnrollment(res); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(e.Out, "All set, %s.\n", res.Profile.FirstName)
	return nil
}

func (e *Enroll) warn(msg string) {
	_, _ = color.New(color.FgRed).Fprintln(e.Out, msg)
}
