// Package enroll drives the one-time setup wizard: profile, PIN and
// biometric preference.
package enroll

import (
	"errors"
	"strconv"
	"strings"

	"tableflip.dev/beho/pkg/pin"
)

// Step is a stage of the wizard. Steps only move forward, except for a PIN
// mismatch which returns to StepCreatePIN.
type Step int

const (
	StepProfile Step = iota
	StepCreatePIN
	StepConfirmPIN
	StepBiometrics
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepProfile:
		return "profile"
	case StepCreatePIN:
		return "createPin"
	case StepConfirmPIN:
		return "confirmPin"
	case StepBiometrics:
		return "biometrics"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	ErrProfileIncomplete = errors.New("enroll: profile incomplete")
	ErrInvalidAge        = errors.New("enroll: invalid age")
	ErrPINMismatch       = errors.New("enroll: pins do not match")
	ErrWrongStep         = errors.New("enroll: operation not valid at this step")
)

// Message returns the inline text shown to the user for a flow error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProfileIncomplete):
		return "All fields are required."
	case errors.Is(err, ErrInvalidAge):
		return "Please enter a valid age."
	case errors.Is(err, ErrPINMismatch):
		return "PINs do not match. Please try again."
	case errors.Is(err, pin.ErrTooShort), errors.Is(err, pin.ErrTooLong), errors.Is(err, pin.ErrNotDigits):
		return "PIN must be 4 to 6 digits."
	default:
		return err.Error()
	}
}

// Profile is the user identity captured at enrollment.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       string `json:"age"`
}

// Validate checks that every field is present and the age is a positive
// whole number.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" || strings.TrimSpace(p.Age) == "" {
		return ErrProfileIncomplete
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.Age))
	if err != nil || n <= 0 {
		return ErrInvalidAge
	}
	return nil
}

// Result is what a completed wizard hands to the session manager.
type Result struct {
	Profile   Profile
	PIN       string
	Biometric bool
}

// Flow holds the transient state of one enrollment.
type Flow struct {
	step      Step
	profile   Profile
	pad       pin.Pad
	candidate string
	err       error
}

// New starts a flow at StepProfile.
func New() *Flow {
	return &Flow{}
}

func (f *Flow) Step() Step { return f.step }

// Err is the inline error of the current step, nil when there is none.
func (f *Flow) Err() error { return f.err }

// Profile returns the profile captured so far.
func (f *Flow) Profile() Profile { return f.profile }

// SubmitProfile validates the profile fields and advances to PIN creation.
// On error the flow stays on the profile step.
func (f *Flow) SubmitProfile(first, last, age string) error {
	if f.step != StepProfile {
		return ErrWrongStep
	}
	p := Profile{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		Age:       strings.TrimSpace(age),
	}
	if err := p.Validate(); err != nil {
		f.err = err
		return err
	}
	f.profile = p
	f.err = nil
	f.step = StepCreatePIN
	return nil
}

func (f *Flow) onPINStep() bool {
	return f.step == StepCreatePIN || f.step == StepConfirmPIN
}

// Press appends a digit to the PIN buffer. Non-digits and digits past the
// maximum length are ignored.
func (f *Flow) Press(r rune) bool {
	if !f.onPINStep() {
		return false
	}
	return f.pad.Press(r)
}

func (f *Flow) Backspace() {
	if f.onPINStep() {
		f.pad.Backspace()
	}
}

// CanSubmit reports whether the buffer holds a submittable PIN.
func (f *Flow) CanSubmit() bool {
	return f.onPINStep() && f.pad.CanSubmit()
}

func (f *Flow) PINLength() int { return f.pad.Len() }

// SubmitPIN captures the candidate on StepCreatePIN and compares against it
// on StepConfirmPIN. A mismatch discards both entries and returns to
// StepCreatePIN.
func (f *Flow) SubmitPIN() error {
	if !f.onPINStep() {
		return ErrWrongStep
	}
	if !f.pad.CanSubmit() {
		return pin.Validate(f.pad.Value())
	}
	entered := f.pad.Value()
	f.pad.Clear()

	if f.step == StepCreatePIN {
		f.candidate = entered
		f.err = nil
		f.step = StepConfirmPIN
		return nil
	}
	if entered != f.candidate {
		f.candidate = ""
		f.err = ErrPINMismatch
		f.step = StepCreatePIN
		return ErrPINMismatch
	}
	f.err = nil
	f.step = StepBiometrics
	return nil
}

// ChooseBiometrics records the preference and completes the flow.
func (f *Flow) ChooseBiometrics(enabled bool) (Result, error) {
	if f.step != StepBiometrics {
		return Result{}, ErrWrongStep
	}
	f.step = StepDone
	res := Result{Profile: f.profile, PIN: f.candidate, Biometric: enabled}
	f.candidate = ""
	return res, nil
}
