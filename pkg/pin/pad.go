package pin

// Pad is the transient digit buffer behind a keypad.
type Pad struct {
	buf []byte
}

// Press appends a digit. Non-digits and presses past MaxLength are ignored.
func (p *Pad) Press(r rune) bool {
	if r < '0' || r > '9' || len(p.buf) >= MaxLength {
		return false
	}
	p.buf = append(p.buf, byte(r))
	return true
}

// Backspace removes the last digit, if any.
func (p *Pad) Backspace() {
	if len(p.buf) > 0 {
		p.buf = p.buf[:len(p.buf)-1]
	}
}

func (p *Pad) Len() int { return len(p.buf) }

func (p *Pad) Value() string { return string(p.buf) }

// CanSubmit is true when the buffer holds an acceptable PIN length.
func (p *Pad) CanSubmit() bool {
	return len(p.buf) >= MinLength && len(p.buf) <= MaxLength
}

func (p *Pad) Clear() {
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.buf = p.buf[:0]
}
