package idle

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// skewClock reports a wall time ahead of its fake timers, the way a process
// sees the clock after being suspended while its timers never ran.
type skewClock struct {
	*clockwork.FakeClock
	mu   sync.Mutex
	skew time.Duration
}

func (c *skewClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.FakeClock.Now().Add(c.skew)
}

func (c *skewClock) suspend(d time.Duration) {
	c.mu.Lock()
	c.skew += d
	c.mu.Unlock()
}

func newCounter() (func(), chan struct{}) {
	ch := make(chan struct{}, 16)
	return func() { ch <- struct{}{} }, ch
}

func expectFire(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected inactivity event")
	}
}

func expectQuiet(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected inactivity event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMonitorFiresOncePerArming(t *testing.T) {
	clock := clockwork.NewFakeClock()
	onIdle, fired := newCounter()
	m := New(clock, time.Minute, onIdle)
	m.Start()
	defer m.Stop()

	for i := 0; i < 5; i++ {
		clock.Advance(30 * time.Second)
		m.Activity(KeyPress)
	}
	last := m.LastActivity()

	clock.Advance(59 * time.Second)
	expectQuiet(t, fired)

	clock.Advance(time.Second)
	expectFire(t, fired)
	if got := clock.Since(last); got != time.Minute {
		t.Fatalf("fired at %v after last activity, want 1m", got)
	}

	clock.Advance(10 * time.Minute)
	expectQuiet(t, fired)
	if m.Armed() {
		t.Fatalf("monitor still armed after firing")
	}
}

func TestMonitorNeverSentinel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	onIdle, fired := newCounter()
	m := New(clock, 0, onIdle)
	m.Start()
	defer m.Stop()

	before := m.LastActivity()
	clock.Advance(time.Second)
	m.Activity(PointerMove)
	if !m.LastActivity().After(before) {
		t.Fatalf("last activity not tracked with timeout 0")
	}
	if m.Armed() {
		t.Fatalf("timeout 0 must not arm a deadline")
	}

	clock.Advance(24 * time.Hour)
	m.Hidden()
	m.Visible()
	expectQuiet(t, fired)
}

func TestMonitorIdleWhileVisible(t *testing.T) {
	clock := clockwork.NewFakeClock()
	onIdle, fired := newCounter()
	m := New(clock, 60*time.Second, onIdle)
	m.Start()
	defer m.Stop()

	clock.Advance(61 * time.Second)
	expectFire(t, fired)
	expectQuiet(t, fired)
}

func TestMonitorVisibleAfterSuspend(t *testing.T) {
	clock := &skewClock{FakeClock: clockwork.NewFakeClock()}
	onIdle, fired := newCounter()
	m := New(clock, 60*time.Second, onIdle)
	m.Start()
	defer m.Stop()

	m.Hidden()
	clock.suspend(120 * time.Second)
	expectQuiet(t, fired)

	m.Visible()
	expectFire(t, fired)

	// The stale arming was cancelled and must not fire a second time.
	clock.Advance(2 * time.Minute)
	expectQuiet(t, fired)
}

func TestMonitorCheckAfterSuspend(t *testing.T) {
	clock := &skewClock{FakeClock: clockwork.NewFakeClock()}
	onIdle, fired := newCounter()
	m := New(clock, 5*time.Minute, onIdle)
	m.Start()
	defer m.Stop()

	m.Check()
	expectQuiet(t, fired)

	// No focus change after resume; the periodic check still sees the gap.
	clock.suspend(2 * time.Hour)
	expectQuiet(t, fired)
	m.Check()
	expectFire(t, fired)

	m.Check()
	expectQuiet(t, fired)
}

func TestMonitorCheckKeepsDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	onIdle, fired := newCounter()
	m := New(clock, time.Minute, onIdle)
	m.Start()
	defer m.Stop()

	clock.Advance(40 * time.Second)
	m.Check()
	clock.Advance(19 * time.Second)
	expectQuiet(t, fired)
	clock.Advance(time.Second)
	expectFire(t, fired)
}

func TestMonitorUsesWallClock(t *testing.T) {
	m := New(clockwork.NewRealClock(), time.Minute, nil)
	m.Start()
	defer m.Stop()

	m.Activity(KeyPress)
	last := m.LastActivity()
	if last != last.Round(0) {
		t.Fatalf("last activity %v carries a monotonic reading", last)
	}
}

func TestMonitorVisibleRearmsForRemainder(t *testing.T) {
	clock := &skewClock{FakeClock: clockwork.NewFakeClock()}
	onIdle, fired := newCounter()
	m := New(clock, 60*time.Second, onIdle)
	m.Start()
	defer m.Stop()

	m.Hidden()
	clock.suspend(40 * time.Second)
	m.Visible()
	expectQuiet(t, fired)
	if !m.Armed() {
		t.Fatalf("monitor should be re-armed")
	}

	clock.Advance(19 * time.Second)
	expectQuiet(t, fired)
	clock.Advance(time.Second)
	expectFire(t, fired)
}

func TestMonitorSetTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	onIdle, fired := newCounter()
	m := New(clock, 0, onIdle)
	m.Start()
	defer m.Stop()

	clock.Advance(30 * time.Second)
	m.SetTimeout(time.Minute)
	clock.Advance(29 * time.Second)
	expectQuiet(t, fired)
	clock.Advance(time.Second)
	expectFire(t, fired)

	m.Activity(Scroll)
	m.SetTimeout(0)
	clock.Advance(time.Hour)
	expectQuiet(t, fired)
}

func TestMonitorStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	onIdle, fired := newCounter()
	m := New(clock, time.Minute, onIdle)
	m.Start()
	m.Stop()

	if m.Armed() || m.Running() {
		t.Fatalf("stopped monitor is armed")
	}
	m.Activity(TouchStart)
	clock.Advance(time.Hour)
	m.Visible()
	expectQuiet(t, fired)
}
