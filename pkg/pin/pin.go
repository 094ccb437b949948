// Package pin verifies and collects numeric PIN codes.
//
// The stored PIN is a plain, directly comparable string. There is no attempt
// counter and no lockout: callers may retry without limit.
package pin

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// PIN length bounds, inclusive.
const (
	MinLength = 4
	MaxLength = 6
)

// ErrorDisplay is how long a mismatch message stays visible before the
// prompt reverts to its neutral text.
const ErrorDisplay = 1500 * time.Millisecond

var (
	ErrTooShort  = errors.New("pin: too short")
	ErrTooLong   = errors.New("pin: too long")
	ErrNotDigits = errors.New("pin: digits only")
)

// Normalize drops every non-digit rune.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Validate reports whether p is an acceptable PIN.
func Validate(p string) error {
	for _, r := range p {
		if r < '0' || r > '9' {
			return ErrNotDigits
		}
	}
	switch {
	case len(p) < MinLength:
		return ErrTooShort
	case len(p) > MaxLength:
		return ErrTooLong
	}
	return nil
}

// Verify reports whether attempt matches stored exactly. An empty stored
// value never matches.
func Verify(attempt, stored string) bool {
	if stored == "" || Validate(attempt) != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(attempt), []byte(stored)) == 1
}
