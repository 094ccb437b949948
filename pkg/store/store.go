package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
)

// Well-known keys persisted by the application.
const (
	KeyPIN                = "pin"
	KeyBiometricEnabled   = "biometricEnabled"
	KeyOnboardingComplete = "onboardingComplete"
	KeyUserProfile        = "userProfile"
	KeyAutoLockDuration   = "autoLockDuration"
	KeyNotes              = "notes"
	KeyShowDailyQuote     = "showDailyQuote"
)

var (
	// ErrNotFound is returned by Read when the key has never been written or
	// was erased. It matches fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("store: key not found: %w", fs.ErrNotExist)

	// ErrInvalidKey is returned for keys that cannot be mapped to a file name.
	ErrInvalidKey = errors.New("store: invalid key")
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Store is the durable key/value contract the application persists through.
// Reads and writes are synchronous; a Write is durable once it returns.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Erase(key string) error
	Has(key string) bool
	Keys(ctx context.Context) []string
	EraseAll() error
	Watch(ctx context.Context) (<-chan Event, error)
}

func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// GetJSON decodes the value stored under key into v. found is false when the
// key is absent or holds a JSON null.
func GetJSON(s Store, key string, v any) (found bool, err error) {
	raw, err := s.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.Write(key, data)
}

// GetString returns the string under key, or def when absent.
func GetString(s Store, key, def string) (string, error) {
	var v string
	found, err := GetJSON(s, key, &v)
	if err != nil || !found {
		return def, err
	}
	return v, nil
}

// GetBool returns the bool under key, or def when absent.
func GetBool(s Store, key string, def bool) (bool, error) {
	var v bool
	found, err := GetJSON(s, key, &v)
	if err != nil || !found {
		return def, err
	}
	return v, nil
}

// GetInt64 returns the number under key, or def when absent.
func GetInt64(s Store, key string, def int64) (int64, error) {
	var v float64
	found, err := GetJSON(s, key, &v)
	if err != nil || !found {
		return def, err
	}
	return int64(v), nil
}
