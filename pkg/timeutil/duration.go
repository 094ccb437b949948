// Package timeutil parses and prints the human-friendly durations used for
// auto-lock and reminder offsets.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const day = 24 * time.Hour

// ErrInvalid wraps every Parse failure.
var ErrInvalid = errors.New("timeutil: invalid duration")

// units is ordered largest first for Format.
var units = []struct {
	short   string
	aliases []string
	value   time.Duration
}{
	{"d", []string{"day", "days"}, day},
	{"h", []string{"hr", "hrs", "hour", "hours"}, time.Hour},
	{"m", []string{"min", "mins", "minute", "minutes"}, time.Minute},
	{"s", []string{"sec", "secs", "second", "seconds"}, time.Second},
}

func unitOf(name string) (time.Duration, bool) {
	for _, u := range units {
		if name == u.short {
			return u.value, true
		}
		for _, a := range u.aliases {
			if name == a {
				return u.value, true
			}
		}
	}
	return 0, false
}

// Parse reads "90s", "15 minutes", "1h 30m" or "2 days" into a positive
// duration. Every number needs a unit.
func Parse(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}

	var total time.Duration
	for s != "" {
		digits := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if digits == 0 {
			return 0, fmt.Errorf("%w: expected a number at %q", ErrInvalid, s)
		}
		if digits < 0 {
			return 0, fmt.Errorf("%w: %q has no unit", ErrInvalid, s)
		}
		n, err := strconv.ParseInt(s[:digits], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		s = strings.TrimLeft(s[digits:], " ")

		end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
		if end < 0 {
			end = len(s)
		}
		unit, ok := unitOf(s[:end])
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalid, s[:end])
		}
		total += time.Duration(n) * unit
		s = strings.TrimLeft(s[end:], " ")
	}

	if total <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalid)
	}
	return total, nil
}

// Format renders d as space separated day/hour/minute/second parts, such as
// "1h 30m". Sub-second remainders are dropped.
func Format(d time.Duration) string {
	var parts []string
	for _, u := range units {
		if d < u.value {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d%s", d/u.value, u.short))
		d %= u.value
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
