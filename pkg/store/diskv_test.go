package store

import (
	"context"
	"errors"
	"io/fs"
	"testing"
)

func openTemp(t *testing.T) Store {
	t.Helper()
	s, err := Open(NewConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestDiskvReadMissingKey(t *testing.T) {
	s := openTemp(t)
	_, err := s.Read(KeyPIN)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist match, got %v", err)
	}
}

func TestDiskvWriteReadErase(t *testing.T) {
	s := openTemp(t)
	if err := SetJSON(s, KeyPIN, "1234"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !s.Has(KeyPIN) {
		t.Fatal("expected key to exist after write")
	}
	pin, err := GetString(s, KeyPIN, "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if pin != "1234" {
		t.Fatalf("expected 1234, got %q", pin)
	}
	if err := s.Erase(KeyPIN); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if err := s.Erase(KeyPIN); err != nil {
		t.Fatalf("erasing a missing key should not fail: %v", err)
	}
	if s.Has(KeyPIN) {
		t.Fatal("expected key gone after erase")
	}
}

func TestDiskvSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first, err := Open(NewConfig(dir))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := SetJSON(first, KeyAutoLockDuration, 60000); err != nil {
		t.Fatalf("write: %v", err)
	}

	second, err := Open(NewConfig(dir))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := GetInt64(second, KeyAutoLockDuration, 300000)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != 60000 {
		t.Fatalf("expected 60000, got %d", got)
	}
}

func TestDiskvEraseAll(t *testing.T) {
	s := openTemp(t)
	for _, key := range []string{KeyPIN, KeyOnboardingComplete, KeyNotes} {
		if err := s.Write(key, []byte(`"x"`)); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}
	if err := s.EraseAll(); err != nil {
		t.Fatalf("erase all: %v", err)
	}
	if keys := s.Keys(context.Background()); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
	if err := s.Write(KeyPIN, []byte(`"1234"`)); err != nil {
		t.Fatalf("store unusable after erase all: %v", err)
	}
}

func TestInvalidKeyRejected(t *testing.T) {
	s := openTemp(t)
	for _, key := range []string{"", "../pin", "a/b", ".."} {
		if err := s.Write(key, []byte("1")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestTypedGettersDefaults(t *testing.T) {
	s := NewMemory()
	if v, err := GetBool(s, KeyShowDailyQuote, true); err != nil || !v {
		t.Fatalf("expected default true, got %v (%v)", v, err)
	}
	if v, err := GetInt64(s, KeyAutoLockDuration, 300000); err != nil || v != 300000 {
		t.Fatalf("expected default 300000, got %v (%v)", v, err)
	}
	if err := s.Write(KeyPIN, []byte("null")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if v, err := GetString(s, KeyPIN, "none"); err != nil || v != "none" {
		t.Fatalf("expected null to read as default, got %q (%v)", v, err)
	}
	if err := s.Write(KeyBiometricEnabled, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := GetBool(s, KeyBiometricEnabled, false); err == nil {
		t.Fatal("expected decode error for corrupt value")
	}
}

func TestDiskvSeesOtherInstanceChanges(t *testing.T) {
	cfg := NewConfig(t.TempDir())
	a, err := Open(cfg)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	b, err := Open(cfg)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}

	if err := SetJSON(a, KeyPIN, "1234"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := GetString(b, KeyPIN, ""); got != "1234" {
		t.Fatalf("b read %q", got)
	}

	if err := SetJSON(a, KeyPIN, "9999"); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got, _ := GetString(b, KeyPIN, ""); got != "9999" {
		t.Fatalf("b read %q after the other store changed it", got)
	}

	if err := a.Erase(KeyPIN); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if _, err := b.Read(KeyPIN); !errors.Is(err, ErrNotFound) {
		t.Fatalf("b read after erase: %v", err)
	}
	if b.Has(KeyPIN) {
		t.Fatalf("b still has the erased key")
	}
}
