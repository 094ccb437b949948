package enroll

import (
	"errors"
	"testing"
)

func typePIN(f *Flow, digits string) {
	for _, r := range digits {
		f.Press(r)
	}
}

func toCreatePIN(t *testing.T) *Flow {
	t.Helper()
	f := New()
	if err := f.SubmitProfile("Ada", "Lovelace", "36"); err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if f.Step() != StepCreatePIN {
		t.Fatalf("step = %v, want createPin", f.Step())
	}
	return f
}

func TestSubmitProfileValidation(t *testing.T) {
	tests := []struct {
		name             string
		first, last, age string
		want             error
	}{
		{"missing first", " ", "Lovelace", "36", ErrProfileIncomplete},
		{"missing last", "Ada", "", "36", ErrProfileIncomplete},
		{"missing age", "Ada", "Lovelace", "  ", ErrProfileIncomplete},
		{"age text", "Ada", "Lovelace", "old", ErrInvalidAge},
		{"age zero", "Ada", "Lovelace", "0", ErrInvalidAge},
		{"age negative", "Ada", "Lovelace", "-3", ErrInvalidAge},
		{"ok", " Ada ", "Lovelace", " 36", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			err := f.SubmitProfile(tt.first, tt.last, tt.age)
			if !errors.Is(err, tt.want) {
				t.Fatalf("SubmitProfile err = %v, want %v", err, tt.want)
			}
			if tt.want != nil {
				if f.Step() != StepProfile {
					t.Fatalf("step advanced on error: %v", f.Step())
				}
				if f.Err() != tt.want {
					t.Fatalf("Err() = %v", f.Err())
				}
				return
			}
			if f.Profile().FirstName != "Ada" || f.Profile().Age != "36" {
				t.Fatalf("profile not trimmed: %+v", f.Profile())
			}
		})
	}
}

func TestPINBufferCap(t *testing.T) {
	f := toCreatePIN(t)
	typePIN(f, "12")
	if f.CanSubmit() {
		t.Fatalf("two digits must not be submittable")
	}
	typePIN(f, "3456789")
	if f.PINLength() != 6 {
		t.Fatalf("len = %d, want 6", f.PINLength())
	}
	f.Backspace()
	if f.PINLength() != 5 || !f.CanSubmit() {
		t.Fatalf("after backspace len = %d", f.PINLength())
	}
}

func TestEnrollmentMatchingPINs(t *testing.T) {
	f := toCreatePIN(t)
	typePIN(f, "1234")
	if err := f.SubmitPIN(); err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Step() != StepConfirmPIN || f.PINLength() != 0 {
		t.Fatalf("step = %v len = %d", f.Step(), f.PINLength())
	}
	typePIN(f, "1234")
	if err := f.SubmitPIN(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if f.Step() != StepBiometrics {
		t.Fatalf("step = %v, want biometrics", f.Step())
	}

	res, err := f.ChooseBiometrics(false)
	if err != nil {
		t.Fatalf("ChooseBiometrics: %v", err)
	}
	if res.PIN != "1234" || res.Biometric || res.Profile.LastName != "Lovelace" {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.Step() != StepDone {
		t.Fatalf("step = %v, want done", f.Step())
	}
	if _, err := f.ChooseBiometrics(true); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("second completion err = %v", err)
	}
}

func TestEnrollmentMismatchRestarts(t *testing.T) {
	f := toCreatePIN(t)
	typePIN(f, "1234")
	_ = f.SubmitPIN()
	typePIN(f, "4321")
	if err := f.SubmitPIN(); !errors.Is(err, ErrPINMismatch) {
		t.Fatalf("confirm err = %v, want mismatch", err)
	}
	if f.Step() != StepCreatePIN || f.PINLength() != 0 {
		t.Fatalf("step = %v len = %d after mismatch", f.Step(), f.PINLength())
	}
	if got := Message(f.Err()); got != "PINs do not match. Please try again." {
		t.Fatalf("Err() = %v", f.Err())
	}

	// The old candidate is gone: a fresh pair must match each other.
	typePIN(f, "5555")
	_ = f.SubmitPIN()
	if f.Err() != nil {
		t.Fatalf("error not cleared: %v", f.Err())
	}
	typePIN(f, "1234")
	if err := f.SubmitPIN(); !errors.Is(err, ErrPINMismatch) {
		t.Fatalf("stale candidate accepted: %v", err)
	}
}

func TestSubmitShortPIN(t *testing.T) {
	f := toCreatePIN(t)
	typePIN(f, "12")
	if err := f.SubmitPIN(); err == nil {
		t.Fatalf("short PIN accepted")
	}
	if f.Step() != StepCreatePIN {
		t.Fatalf("step = %v", f.Step())
	}
}
