// Package note stores the user's notes as a single JSON array.
package note

import (
	"encoding/json"
	"time"
)

// Note is one note. Reminder is nil when no reminder is set.
type Note struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	CreatedAt Millis  `json:"createdAt"`
	UpdatedAt Millis  `json:"updatedAt"`
	Color     string  `json:"color,omitempty"`
	Font      string  `json:"font,omitempty"`
	FontSize  int     `json:"fontSize,omitempty"`
	Reminder  *Millis `json:"reminder"`
	Hidden    bool    `json:"isHidden"`
}

// DisplayTitle is the title, or a placeholder for untitled notes.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return "Untitled Note"
	}
	return n.Title
}

// Due reports whether the reminder is set and not after now.
func (n Note) Due(now time.Time) bool {
	return n.Reminder != nil && !n.Reminder.After(now)
}

// Millis is a time persisted as milliseconds since the Unix epoch.
type Millis struct {
	time.Time
}

// At truncates t to millisecond precision.
func At(t time.Time) Millis {
	return Millis{time.UnixMilli(t.UnixMilli())}
}

func (m Millis) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("0"), nil
	}
	return json.Marshal(m.UnixMilli())
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	if ms == 0 {
		m.Time = time.Time{}
		return nil
	}
	m.Time = time.UnixMilli(int64(ms))
	return nil
}

func (m Millis) String() string {
	return m.Local().Format("Jan 2, 2006 15:04")
}
