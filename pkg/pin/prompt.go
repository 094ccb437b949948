package pin

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Mode selects between checking an existing PIN and choosing a new one.
type Mode int

const (
	// ModeEnter verifies the typed PIN.
	ModeEnter Mode = iota
	// ModeSet asks for a new PIN twice.
	ModeSet
)

// Result is the outcome of Prompt.Submit.
type Result int

const (
	// ResultIncomplete means the buffer is not a submittable length.
	ResultIncomplete Result = iota
	// ResultAccepted means the PIN verified (enter) or both passes matched (set).
	ResultAccepted
	// ResultRejected means the PIN was wrong or the passes differed.
	ResultRejected
	// ResultNext means the first pass of a new PIN was captured.
	ResultNext
)

const (
	subtitleEnter    = "Enter your PIN to unlock"
	subtitleCreate   = "Create a new PIN"
	subtitleConfirm  = "Confirm your PIN"
	subtitleWrong    = "Incorrect PIN. Try again."
	subtitleMismatch = "PINs do not match. Try again."
)

// Prompt is a keypad screen. In ModeEnter it checks the buffer through the
// verify func; in ModeSet it captures and confirms a new PIN, available from
// Value after ResultAccepted.
type Prompt struct {
	Mode  Mode
	Title string

	pad    Pad
	first  string
	value  string
	verify func(string) bool
	clock  clockwork.Clock

	errText  string
	errUntil time.Time
}

// NewEnterPrompt returns a prompt that accepts PINs for which verify is true.
func NewEnterPrompt(title string, verify func(string) bool, clock clockwork.Clock) *Prompt {
	if title == "" {
		title = "Enter PIN"
	}
	return &Prompt{Mode: ModeEnter, Title: title, verify: verify, clock: orReal(clock)}
}

// NewSetPrompt returns a prompt that asks for a new PIN and its confirmation.
func NewSetPrompt(title string, clock clockwork.Clock) *Prompt {
	if title == "" {
		title = "Set new PIN"
	}
	return &Prompt{Mode: ModeSet, Title: title, clock: orReal(clock)}
}

func orReal(c clockwork.Clock) clockwork.Clock {
	if c == nil {
		return clockwork.NewRealClock()
	}
	return c
}

func (p *Prompt) Press(r rune) bool { return p.pad.Press(r) }

func (p *Prompt) Backspace() { p.pad.Backspace() }

func (p *Prompt) Len() int { return p.pad.Len() }

func (p *Prompt) CanSubmit() bool { return p.pad.CanSubmit() }

// Value is the accepted PIN once Submit returned ResultAccepted.
func (p *Prompt) Value() string { return p.value }

// Submit evaluates the current buffer.
func (p *Prompt) Submit() Result {
	if !p.pad.CanSubmit() {
		return ResultIncomplete
	}
	entered := p.pad.Value()
	p.pad.Clear()

	if p.Mode == ModeEnter {
		if p.verify != nil && p.verify(entered) {
			p.value = entered
			p.errUntil = time.Time{}
			return ResultAccepted
		}
		p.fail(subtitleWrong)
		return ResultRejected
	}

	if p.first == "" {
		p.first = entered
		p.errUntil = time.Time{}
		return ResultNext
	}
	if entered == p.first {
		p.value = entered
		p.first = ""
		return ResultAccepted
	}
	p.first = ""
	p.fail(subtitleMismatch)
	return ResultRejected
}

func (p *Prompt) fail(text string) {
	p.errText = text
	p.errUntil = p.clock.Now().Add(ErrorDisplay)
}

// Failed reports whether the error state is still showing.
func (p *Prompt) Failed() bool {
	return !p.errUntil.IsZero() && p.clock.Now().Before(p.errUntil)
}

// Subtitle is the line under the title: the error text while Failed, the
// neutral instruction otherwise.
func (p *Prompt) Subtitle() string {
	if p.Failed() {
		return p.errText
	}
	switch {
	case p.Mode == ModeEnter:
		return subtitleEnter
	case p.first != "":
		return subtitleConfirm
	default:
		return subtitleCreate
	}
}

// Reset discards any typed digits and pending first pass.
func (p *Prompt) Reset() {
	p.pad.Clear()
	p.first = ""
	p.value = ""
	p.errUntil = time.Time{}
}
