package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/idle"
	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/store"
)

// Manager is the single owner of the credential and the session state.
// It is safe for concurrent use; idle callbacks, UI input and store watch
// reloads may arrive from different goroutines.
type Manager struct {
	mu    sync.Mutex
	store store.Store
	clock clockwork.Clock
	log   *zap.Logger
	idle  *idle.Monitor

	state     State
	enrolled  bool
	pin       string
	locked    bool
	biometric bool
	autoLock  time.Duration
	profile   *enroll.Profile

	subs    map[int]chan Event
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager returns a manager over st. Call Load before anything else.
func NewManager(st store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		clock:    clockwork.NewRealClock(),
		log:      zap.NewNop(),
		autoLock: DefaultAutoLock,
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.idle = idle.New(m.clock, m.autoLock, m.HandleInactivity, idle.WithLogger(m.log.Named("idle")))
	return m
}

// Load reads the persisted keys and derives the initial state. A stored
// PIN always starts the session locked.
func (m *Manager) Load() error {
	m.mu.Lock()
	err := m.readLocked()
	if err == nil {
		switch {
		case !m.enrolled:
			m.state = StateOnboarding
			m.locked = false
		case m.pin != "":
			m.state = StateLocked
			m.locked = true
		default:
			m.state = StateUnlocked
			m.locked = false
		}
		m.log.Info("session loaded", zap.Stringer("state", m.state))
	}
	hasPIN, timeout := m.pin != "", m.autoLock
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.syncMonitor(hasPIN, timeout, true)
	return nil
}

// Reload re-reads the store after a change made elsewhere. It never locks
// an unlocked session; it unlocks when the PIN disappeared and returns to
// onboarding when the enrollment flag was cleared.
func (m *Manager) Reload() error {
	m.mu.Lock()
	if m.state == StateUnauthenticated {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	wasLocked := m.state == StateLocked
	if err := m.readLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	switch {
	case !m.enrolled:
		m.state = StateOnboarding
		m.locked = false
	case m.pin == "":
		m.state = StateUnlocked
		m.locked = false
	case wasLocked:
		m.state = StateLocked
		m.locked = true
	default:
		m.state = StateUnlocked
		m.locked = false
	}
	hasPIN, timeout := m.pin != "", m.autoLock
	m.emitLocked(Event{Type: EventReloaded})
	m.mu.Unlock()

	m.syncMonitor(hasPIN, timeout, !m.idle.Running())
	return nil
}

func (m *Manager) readLocked() error {
	enrolled, err := store.GetBool(m.store, store.KeyOnboardingComplete, false)
	if err != nil {
		return err
	}
	code, err := store.GetString(m.store, store.KeyPIN, "")
	if err != nil {
		return err
	}
	biometric, err := store.GetBool(m.store, store.KeyBiometricEnabled, false)
	if err != nil {
		return err
	}
	ms, err := store.GetInt64(m.store, store.KeyAutoLockDuration, DefaultAutoLock.Milliseconds())
	if err != nil {
		return err
	}
	if ms < 0 {
		ms = DefaultAutoLock.Milliseconds()
	}
	var profile enroll.Profile
	found, err := store.GetJSON(m.store, store.KeyUserProfile, &profile)
	if err != nil {
		return err
	}

	m.enrolled = enrolled
	m.pin = code
	m.biometric = biometric
	m.autoLock = time.Duration(ms) * time.Millisecond
	m.profile = nil
	if found {
		m.profile = &profile
	}
	return nil
}

// syncMonitor must be called without m.mu held: the monitor may call
// HandleInactivity synchronously.
func (m *Manager) syncMonitor(hasPIN bool, timeout time.Duration, restart bool) {
	if !hasPIN {
		m.idle.Stop()
		return
	}
	m.idle.SetTimeout(timeout)
	if restart {
		m.idle.Start()
	}
}

// CompleteEnrollment persists the result of the enrollment wizard and
// unlocks the session. Either every key is written or none is.
func (m *Manager) CompleteEnrollment(res enroll.Result) error {
	m.mu.Lock()
	switch m.state {
	case StateUnauthenticated:
		m.mu.Unlock()
		return ErrNotLoaded
	case StateOnboarding:
	default:
		m.mu.Unlock()
		return ErrAlreadyEnrolled
	}
	if err := res.Profile.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := pin.Validate(res.PIN); err != nil {
		m.mu.Unlock()
		return err
	}

	tx := m.begin()
	err := tx.set(store.KeyUserProfile, res.Profile)
	if err == nil {
		err = tx.set(store.KeyPIN, res.PIN)
	}
	if err == nil {
		err = tx.set(store.KeyBiometricEnabled, res.Biometric)
	}
	if err == nil {
		err = tx.set(store.KeyOnboardingComplete, true)
	}
	if err != nil {
		if rbErr := tx.rollback(); rbErr != nil {
			m.log.Error("enrollment rollback failed", zap.Error(rbErr))
		}
		m.mu.Unlock()
		return fmt.Errorf("session: complete enrollment: %w", err)
	}

	profile := res.Profile
	m.profile = &profile
	m.pin = res.PIN
	m.biometric = res.Biometric
	m.enrolled = true
	m.locked = false
	m.state = StateUnlocked
	timeout := m.autoLock
	m.log.Info("enrollment complete", zap.Bool("biometric", res.Biometric))
	m.emitLocked(Event{Type: EventEnrolled})
	m.mu.Unlock()

	m.syncMonitor(true, timeout, true)
	return nil
}

// Lock locks an unlocked session by hand.
func (m *Manager) Lock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pin == "" {
		return ErrNoCredential
	}
	if m.state == StateUnlocked {
		m.lockLocked("manual")
	}
	return nil
}

// HandleInactivity is the idle monitor's callback. Without a PIN, or when
// not unlocked, it does nothing.
func (m *Manager) HandleInactivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateUnlocked || m.pin == "" {
		return
	}
	m.lockLocked("idle")
}

func (m *Manager) lockLocked(reason string) {
	m.state = StateLocked
	m.locked = true
	m.log.Info("session locked", zap.String("reason", reason))
	m.emitLocked(Event{Type: EventLocked, Reason: reason})
}

// Unlock checks attempt against the stored PIN.
func (m *Manager) Unlock(attempt string) error {
	m.mu.Lock()
	if m.state != StateLocked {
		m.mu.Unlock()
		return ErrNotLocked
	}
	if !pin.Verify(attempt, m.pin) {
		m.log.Warn("unlock rejected")
		m.mu.Unlock()
		return ErrWrongPIN
	}
	m.state = StateUnlocked
	m.locked = false
	m.log.Info("session unlocked")
	m.emitLocked(Event{Type: EventUnlocked})
	m.mu.Unlock()

	m.idle.Start()
	return nil
}

// Verify reports whether attempt matches the stored PIN without touching
// the session state.
func (m *Manager) Verify(attempt string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pin.Verify(attempt, m.pin)
}

// ChangePIN replaces the PIN while unlocked. The session stays unlocked.
func (m *Manager) ChangePIN(old, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.settingsAllowedLocked(); err != nil {
		return err
	}
	if !pin.Verify(old, m.pin) {
		m.log.Warn("pin change rejected")
		return ErrWrongPIN
	}
	if err := pin.Validate(next); err != nil {
		return err
	}
	if err := store.SetJSON(m.store, store.KeyPIN, next); err != nil {
		return fmt.Errorf("session: change pin: %w", err)
	}
	m.pin = next
	m.log.Info("pin changed")
	m.emitLocked(Event{Type: EventPINChanged})
	return nil
}

func (m *Manager) settingsAllowedLocked() error {
	switch {
	case m.state == StateUnauthenticated:
		return ErrNotLoaded
	case m.pin == "":
		return ErrNoCredential
	case m.state == StateLocked:
		return ErrLocked
	}
	return nil
}

// SetAutoLock stores the quiet period after which the session locks. Zero
// disables auto-lock.
func (m *Manager) SetAutoLock(d time.Duration) error {
	if d < 0 {
		return ErrInvalidDuration
	}
	m.mu.Lock()
	if err := m.settingsAllowedLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := store.SetJSON(m.store, store.KeyAutoLockDuration, d.Milliseconds()); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("session: set auto-lock: %w", err)
	}
	m.autoLock = d
	m.log.Info("auto-lock changed", zap.Duration("timeout", d))
	m.emitLocked(Event{Type: EventSettingsChanged})
	m.mu.Unlock()

	m.idle.SetTimeout(d)
	return nil
}

// AutoLock returns the configured quiet period.
func (m *Manager) AutoLock() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoLock
}

// SetBiometric stores the biometric preference. Nothing else reads it.
func (m *Manager) SetBiometric(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.settingsAllowedLocked(); err != nil {
		return err
	}
	if err := store.SetJSON(m.store, store.KeyBiometricEnabled, enabled); err != nil {
		return fmt.Errorf("session: set biometric: %w", err)
	}
	m.biometric = enabled
	m.emitLocked(Event{Type: EventSettingsChanged})
	return nil
}

// ResetSecurity removes the PIN, the profile, the biometric preference and
// the enrollment flag after confirmation, then reloads into onboarding.
func (m *Manager) ResetSecurity(c Confirmer) error {
	if err := confirm(c, ResetSecurityPrompt); err != nil {
		return err
	}
	var errs []error
	for _, key := range []string{store.KeyPIN, store.KeyBiometricEnabled, store.KeyOnboardingComplete, store.KeyUserProfile} {
		if err := m.store.Erase(key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("session: reset security: %w", err)
	}
	m.log.Info("security reset")
	return m.restart()
}

// ResetApp erases the whole store after confirmation, then reloads into
// onboarding.
func (m *Manager) ResetApp(c Confirmer) error {
	if err := confirm(c, ResetAppPrompt); err != nil {
		return err
	}
	if err := m.store.EraseAll(); err != nil {
		return fmt.Errorf("session: reset app: %w", err)
	}
	m.log.Info("app reset")
	return m.restart()
}

func confirm(c Confirmer, prompt string) error {
	if c == nil {
		return ErrNotConfirmed
	}
	ok, err := c.Confirm(prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}

func (m *Manager) restart() error {
	if err := m.Load(); err != nil {
		return err
	}
	m.mu.Lock()
	m.emitLocked(Event{Type: EventReset})
	m.mu.Unlock()
	return nil
}

// Activity forwards a user input signal to the idle monitor.
func (m *Manager) Activity(s idle.Signal) {
	m.idle.Activity(s)
}

// Visibility forwards a foreground/background change to the idle monitor.
func (m *Manager) Visibility(visible bool) {
	if visible {
		m.idle.Visible()
		return
	}
	m.idle.Hidden()
}

// CheckIdle compares the wall clock against the idle deadline. Run it
// periodically so a deadline that passed while the machine slept still locks.
func (m *Manager) CheckIdle() {
	m.idle.Check()
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot copies the session for display.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		State:     m.state,
		Enrolled:  m.enrolled,
		Locked:    m.locked,
		HasPIN:    m.pin != "",
		Biometric: m.biometric,
		AutoLock:  m.autoLock,
	}
	if m.profile != nil {
		p := *m.profile
		s.Profile = &p
	}
	return s
}

// Subscribe returns a channel of state changes and a func that cancels the
// subscription. Slow subscribers miss events rather than block the manager.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan Event, 16)
	m.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

func (m *Manager) emitLocked(ev Event) {
	ev.State = m.state
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close stops the idle monitor and ends all subscriptions.
func (m *Manager) Close() {
	m.idle.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

// txn remembers the previous value of every key it writes so a failed
// multi-key update can be undone.
type txn struct {
	s       store.Store
	written []string
	prev    map[string][]byte
}

func (m *Manager) begin() *txn {
	return &txn{s: m.store, prev: make(map[string][]byte)}
}

func (t *txn) set(key string, v any) error {
	if _, seen := t.prev[key]; !seen {
		old, err := t.s.Read(key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		t.prev[key] = old
	}
	if err := store.SetJSON(t.s, key, v); err != nil {
		return err
	}
	t.written = append(t.written, key)
	return nil
}

func (t *txn) rollback() error {
	var errs []error
	for i := len(t.written) - 1; i >= 0; i-- {
		key := t.written[i]
		var err error
		if old := t.prev[key]; old != nil {
			err = t.s.Write(key, old)
		} else {
			err = t.s.Erase(key)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
