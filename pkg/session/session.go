// Package session owns the credential and the lock state of the
// application. Every change to the PIN, the profile, the biometric
// preference or the locked flag goes through a Manager.
package session

import (
	"errors"
	"time"

	"tableflip.dev/beho/pkg/enroll"
)

// State is the position of the session state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateOnboarding
	StateLocked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateOnboarding:
		return "onboarding"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// DefaultAutoLock applies when no auto-lock duration was ever stored.
const DefaultAutoLock = 5 * time.Minute

// AutoLockChoices are the durations offered by the settings screen. Zero
// means never.
var AutoLockChoices = []time.Duration{0, time.Minute, 5 * time.Minute, 15 * time.Minute}

var (
	ErrNotLoaded       = errors.New("session: not loaded")
	ErrAlreadyEnrolled = errors.New("session: already enrolled")
	ErrNoCredential    = errors.New("session: no pin set")
	ErrNotLocked       = errors.New("session: not locked")
	ErrWrongPIN        = errors.New("session: wrong pin")
	ErrLocked          = errors.New("session: locked")
	ErrNotConfirmed    = errors.New("session: not confirmed")
	ErrInvalidDuration = errors.New("session: invalid auto-lock duration")
)

// EventType names a state change published to subscribers.
type EventType int

const (
	EventLocked EventType = iota
	EventUnlocked
	EventEnrolled
	EventPINChanged
	EventSettingsChanged
	EventReset
	EventReloaded
)

func (e EventType) String() string {
	switch e {
	case EventLocked:
		return "locked"
	case EventUnlocked:
		return "unlocked"
	case EventEnrolled:
		return "enrolled"
	case EventPINChanged:
		return "pin-changed"
	case EventSettingsChanged:
		return "settings-changed"
	case EventReset:
		return "reset"
	case EventReloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after the change took effect.
type Event struct {
	Type  EventType
	State State
	// Reason is set for EventLocked: "idle" or "manual".
	Reason string
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	State     State           `json:"state"`
	Enrolled  bool            `json:"enrolled"`
	Locked    bool            `json:"locked"`
	HasPIN    bool            `json:"hasPin"`
	Biometric bool            `json:"biometricEnabled"`
	AutoLock  time.Duration   `json:"autoLock"`
	Profile   *enroll.Profile `json:"profile,omitempty"`
}

// Confirmer gates destructive operations behind an explicit yes.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

const (
	ResetSecurityPrompt = "Are you sure? This will remove your PIN and biometric settings, and you will be prompted to set them up again."
	ResetAppPrompt      = "Are you sure you want to reset all app data? This action is irreversible."
)
