// Package idle raises an inactivity event after a quiet period.
package idle

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Signal is a user activity that postpones the inactivity event.
type Signal int

const (
	PointerMove Signal = iota
	PointerDown
	KeyPress
	Scroll
	TouchStart
)

func (s Signal) String() string {
	switch s {
	case PointerMove:
		return "pointer-move"
	case PointerDown:
		return "pointer-down"
	case KeyPress:
		return "key-press"
	case Scroll:
		return "scroll"
	case TouchStart:
		return "touch-start"
	default:
		return "unknown"
	}
}

// Monitor tracks the last activity and fires onIdle once the configured
// timeout elapses without further activity. A timeout of zero never fires.
//
// Each arming fires at most once. onIdle runs without the monitor lock held
// and may call back into the monitor.
type Monitor struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	log     *zap.Logger
	timeout time.Duration
	onIdle  func()

	last    time.Time
	timer   clockwork.Timer
	gen     uint64
	fired   bool
	stopped bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger used for arming and firing diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns a monitor that ignores activity until Start.
func New(clock clockwork.Clock, timeout time.Duration, onIdle func(), opts ...Option) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if timeout < 0 {
		timeout = 0
	}
	m := &Monitor{
		clock:   clock,
		log:     zap.NewNop(),
		timeout: timeout,
		onIdle:  onIdle,
		stopped: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.last = m.now()
	return m
}

// now is the wall-clock time with the monotonic reading stripped, so elapsed
// time includes periods the machine spent suspended.
func (m *Monitor) now() time.Time {
	return m.clock.Now().Round(0)
}

func (m *Monitor) sinceLocked() time.Duration {
	return m.now().Sub(m.last)
}

// Start records now as the last activity and arms the deadline.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = false
	m.last = m.now()
	m.armLocked(m.timeout)
}

// Activity records a qualifying input signal and re-arms the deadline.
func (m *Monitor) Activity(s Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.last = m.now()
	m.armLocked(m.timeout)
}

// SetTimeout changes the quiet period. The deadline is re-armed relative to
// the last recorded activity.
func (m *Monitor) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	m.timeout = d
	if m.stopped {
		m.mu.Unlock()
		return
	}
	remaining := d - m.sinceLocked()
	if d > 0 && remaining <= 0 {
		m.cancelLocked()
		m.fired = true
		m.mu.Unlock()
		m.fire()
		return
	}
	m.armLocked(remaining)
	m.mu.Unlock()
}

// Hidden notes that the process went to the background. Timers keep running;
// correctness after a suspend is restored by Visible.
func (m *Monitor) Hidden() {
	m.log.Debug("idle monitor hidden")
}

// Visible re-evaluates the deadline when the process returns to the
// foreground: an elapsed quiet period fires immediately, otherwise the timer
// is re-armed for the remaining interval.
func (m *Monitor) Visible() {
	m.check("idle deadline passed while hidden")
}

// Check compares the wall clock against the deadline. Runtime timers do not
// advance while the machine sleeps, so callers run it periodically to catch
// a deadline that passed during a suspend.
func (m *Monitor) Check() {
	m.check("idle deadline passed while suspended")
}

func (m *Monitor) check(msg string) {
	m.mu.Lock()
	if m.stopped || m.fired || m.timeout == 0 {
		m.mu.Unlock()
		return
	}
	elapsed := m.sinceLocked()
	if elapsed >= m.timeout {
		m.cancelLocked()
		m.fired = true
		m.mu.Unlock()
		m.log.Debug(msg, zap.Duration("elapsed", elapsed))
		m.fire()
		return
	}
	m.armLocked(m.timeout - elapsed)
	m.mu.Unlock()
}

// Stop cancels the pending deadline; later signals are ignored until Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.cancelLocked()
}

// LastActivity returns the timestamp of the most recent activity.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Armed reports whether a deadline is pending.
func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

// Running reports whether the monitor was started and not stopped since.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.stopped
}

// Timeout returns the configured quiet period.
func (m *Monitor) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

func (m *Monitor) armLocked(d time.Duration) {
	m.cancelLocked()
	m.fired = false
	if m.timeout == 0 {
		return
	}
	gen := m.gen
	m.timer = m.clock.AfterFunc(d, func() { m.expire(gen) })
}

func (m *Monitor) cancelLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.timer = nil
	m.fired = true
	m.mu.Unlock()
	m.fire()
}

func (m *Monitor) fire() {
	m.log.Debug("idle deadline reached")
	if m.onIdle != nil {
		m.onIdle()
	}
}
