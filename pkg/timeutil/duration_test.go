package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := map[string]time.Duration{
		"15m":        15 * time.Minute,
		"15 minutes": 15 * time.Minute,
		"1h 30m":     90 * time.Minute,
		"1h30m":      90 * time.Minute,
		"2d6h":       54 * time.Hour,
		" 2 Days ":   48 * time.Hour,
		"90s":        90 * time.Second,
	}
	for in, want := range tests {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "noop", "5", "0m", "3 fortnights", "1w", "-1m", "m5"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Parse(%q) err = %v", in, err)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := map[time.Duration]string{
		0:                             "0s",
		90 * time.Second:              "1m 30s",
		54*time.Hour + 30*time.Minute: "2d 6h 30m",
		time.Hour:                     "1h",
	}
	for d, want := range tests {
		if got := Format(d); got != want {
			t.Fatalf("Format(%v) = %q, want %q", d, got, want)
		}
	}
}
