package note

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"

	"tableflip.dev/beho/pkg/store"
)

var (
	ErrNotFound      = errors.New("note: not found")
	ErrNoPersistence = errors.New("note: no store configured")
)

// Service provides note operations shared by the TUI and the CLI.
type Service struct {
	Store store.Store
	Clock clockwork.Clock

	mu sync.Mutex
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) load() ([]Note, error) {
	if s.Store == nil {
		return nil, ErrNoPersistence
	}
	var notes []Note
	if _, err := store.GetJSON(s.Store, store.KeyNotes, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Service) save(notes []Note) error {
	if notes == nil {
		notes = []Note{}
	}
	return store.SetJSON(s.Store, store.KeyNotes, notes)
}

// update applies fn to the note with id and persists the result.
func (s *Service) update(id string, fn func(*Note)) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].ID == id {
			fn(&notes[i])
			if err := s.save(notes); err != nil {
				return nil, err
			}
			n := notes[i]
			return &n, nil
		}
	}
	return nil, ErrNotFound
}

// List returns every note in stored order.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Visible returns the notes that are not hidden, most recently updated first.
func (s *Service) Visible(ctx context.Context) ([]Note, error) {
	return s.filter(func(n Note) bool { return !n.Hidden })
}

// Hidden returns the vault's notes, most recently updated first.
func (s *Service) Hidden(ctx context.Context) ([]Note, error) {
	return s.filter(func(n Note) bool { return n.Hidden })
}

func (s *Service) filter(keep func(Note) bool) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	SortByUpdated(out)
	return out, nil
}

// SortByUpdated orders notes by UpdatedAt, newest first.
func SortByUpdated(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt.Time)
	})
}

// Get returns the note with id.
func (s *Service) Get(ctx context.Context, id string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new note at the front of the list.
func (s *Service) Create(ctx context.Context, title, content string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	now := At(s.now())
	n := Note{
		ID:        "note_" + ksuid.New().String(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(append([]Note{n}, notes...)); err != nil {
		return nil, err
	}
	return &n, nil
}

// Save replaces the stored note with the same ID, or appends n when no such
// note exists. UpdatedAt is always refreshed.
func (s *Service) Save(ctx context.Context, n Note) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	now := At(s.now())
	n.UpdatedAt = now
	for i := range notes {
		if notes[i].ID == n.ID {
			notes[i] = n
			if err := s.save(notes); err != nil {
				return nil, err
			}
			return &n, nil
		}
	}
	if n.ID == "" {
		n.ID = "note_" + ksuid.New().String()
	}
	n.CreatedAt = now
	if err := s.save(append(notes, n)); err != nil {
		return nil, err
	}
	return &n, nil
}

// Delete removes the note with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return err
	}
	for i := range notes {
		if notes[i].ID == id {
			return s.save(append(notes[:i], notes[i+1:]...))
		}
	}
	return ErrNotFound
}

// SetHidden moves a note into or out of the vault.
func (s *Service) SetHidden(ctx context.Context, id string, hidden bool) (*Note, error) {
	now := At(s.now())
	return s.update(id, func(n *Note) {
		n.Hidden = hidden
		n.UpdatedAt = now
	})
}

// SetReminder schedules a reminder for the note.
func (s *Service) SetReminder(ctx context.Context, id string, at time.Time) (*Note, error) {
	r := At(at)
	return s.update(id, func(n *Note) { n.Reminder = &r })
}

// ClearReminder removes the note's reminder.
func (s *Service) ClearReminder(ctx context.Context, id string) (*Note, error) {
	return s.update(id, func(n *Note) { n.Reminder = nil })
}

// DueReminders returns notes whose reminder is at or before now.
func (s *Service) DueReminders(ctx context.Context, now time.Time) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	var due []Note
	for _, n := range notes {
		if n.Due(now) {
			due = append(due, n)
		}
	}
	return due, nil
}

// SweepReminders returns the due notes and clears their reminders so each
// reminder is delivered once.
func (s *Service) SweepReminders(ctx context.Context, now time.Time) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	var due []Note
	for i := range notes {
		if notes[i].Due(now) {
			due = append(due, notes[i])
			notes[i].Reminder = nil
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	if err := s.save(notes); err != nil {
		return nil, err
	}
	return due, nil
}
