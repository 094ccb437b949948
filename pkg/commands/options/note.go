package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/timeutil"
)

const (
	layoutDateTime = "2006-1-2 15:04"
	layoutTime     = "15:04"
)

// NoteOptions
type NoteOptions struct {
	Content      string
	Hidden       bool
	RemindString string
}

func AddNoteArgs(cmd *cobra.Command, o *NoteOptions) {
	cmd.Flags().StringVarP(&o.Content, "content", "c", "",
		"Body of the note.")
	cmd.Flags().BoolVar(&o.Hidden, "hidden", false,
		"Put the note straight into the vault.")
	cmd.Flags().StringVar(&o.RemindString, "remind", "",
		`Set a reminder, example: --remind="2024-3-1 09:00", --remind="17:30" or --remind=+45m or --remind="+2 days".`)
}

// GetRemind parses --remind relative to now. A bare time that already
// passed today means tomorrow.
func (o *NoteOptions) GetRemind(now time.Time) (*time.Time, error) {
	s := strings.TrimSpace(o.RemindString)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "+") {
		d, err := timeutil.Parse(s[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid --remind %q: %w", s, err)
		}
		t := now.Add(d)
		return &t, nil
	}
	if t, err := time.ParseInLocation(layoutDateTime, s, now.Location()); err == nil {
		return &t, nil
	}
	clock, err := time.ParseInLocation(layoutTime, s, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid --remind %q", s)
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
