// Package vault guards the hidden notes behind a second PIN prompt that is
// independent of the session lock.
package vault

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/pin"
)

// DefaultGrace is how long the unlocked flag survives a close.
const DefaultGrace = 300 * time.Millisecond

const promptTitle = "Enter Vault PIN"

var (
	ErrClosed   = errors.New("vault: closed")
	ErrWrongPIN = errors.New("vault: wrong pin")
	ErrLocked   = errors.New("vault: locked")
)

// NoteSource lists hidden notes.
type NoteSource interface {
	Hidden(ctx context.Context) ([]note.Note, error)
}

// Gate is the vault's own lock. It shares the stored PIN with the session
// through verify but never reads or changes session state.
type Gate struct {
	mu     sync.Mutex
	verify func(string) bool
	source NoteSource
	clock  clockwork.Clock
	grace  time.Duration
	log    *zap.Logger

	open     bool
	unlocked bool
	prompt   *pin.Prompt
	reset    clockwork.Timer
	gen      uint64
}

// Option configures a Gate.
type Option func(*Gate)

func WithClock(c clockwork.Clock) Option {
	return func(g *Gate) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithGrace sets the delay between Close and the unlocked flag reset.
func WithGrace(d time.Duration) Option {
	return func(g *Gate) {
		if d >= 0 {
			g.grace = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGate returns a closed gate.
func NewGate(verify func(string) bool, source NoteSource, opts ...Option) *Gate {
	g := &Gate{
		verify: verify,
		source: source,
		clock:  clockwork.NewRealClock(),
		grace:  DefaultGrace,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.prompt = pin.NewEnterPrompt(promptTitle, g.check, g.clock)
	return g
}

func (g *Gate) check(attempt string) bool {
	return g.verify != nil && g.verify(attempt)
}

// Open shows the vault. It always starts locked, even when a previous
// close has not reached its grace deadline yet.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelResetLocked()
	g.open = true
	g.unlocked = false
	g.prompt.Reset()
}

// Unlock checks attempt against the stored PIN.
func (g *Gate) Unlock(attempt string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return ErrClosed
	}
	if !g.check(attempt) {
		g.log.Warn("vault unlock rejected")
		return ErrWrongPIN
	}
	g.unlocked = true
	return nil
}

// Prompt is the keypad shown while the vault is locked. Use Submit rather
// than Prompt().Submit so the gate observes the result.
func (g *Gate) Prompt() *pin.Prompt {
	return g.prompt
}

// Submit submits the prompt's buffer and unlocks the gate on success.
func (g *Gate) Submit() (pin.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return pin.ResultIncomplete, ErrClosed
	}
	res := g.prompt.Submit()
	switch res {
	case pin.ResultAccepted:
		g.unlocked = true
	case pin.ResultRejected:
		g.log.Warn("vault unlock rejected")
	}
	return res, nil
}

// Notes lists the hidden notes once unlocked, newest first.
func (g *Gate) Notes(ctx context.Context) ([]note.Note, error) {
	g.mu.Lock()
	if !g.open {
		g.mu.Unlock()
		return nil, ErrClosed
	}
	if !g.unlocked {
		g.mu.Unlock()
		return nil, ErrLocked
	}
	g.mu.Unlock()

	notes, err := g.source.Hidden(ctx)
	if err != nil {
		return nil, err
	}
	note.SortByUpdated(notes)
	return notes, nil
}

// Select hands id back to the caller and closes the vault.
func (g *Gate) Select(id string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return "", ErrClosed
	}
	if !g.unlocked {
		return "", ErrLocked
	}
	g.closeLocked()
	return id, nil
}

// Close hides the vault. The unlocked flag is cleared after the grace
// period.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		g.closeLocked()
	}
}

func (g *Gate) closeLocked() {
	g.open = false
	g.prompt.Reset()
	g.cancelResetLocked()
	gen := g.gen
	g.reset = g.clock.AfterFunc(g.grace, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if gen != g.gen {
			return
		}
		g.unlocked = false
		g.reset = nil
	})
}

func (g *Gate) cancelResetLocked() {
	g.gen++
	if g.reset != nil {
		g.reset.Stop()
		g.reset = nil
	}
}

func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}
