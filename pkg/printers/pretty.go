// Package printers renders notes and session state for the CLI.
package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " note")
	default:
		_, _ = c.Fprintln(pp.out(), " notes")
	}
}

// Notes prints one row per note, newest first as given.
func (pp *PrettyPrint) Notes(notes ...note.Note) {
	if len(notes) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, n := range notes {
		title := truncate.StringWithTail(n.DisplayTitle(), 48, "…")
		var flags []string
		if n.Hidden {
			flags = append(flags, "hidden")
		}
		if n.Reminder != nil {
			flags = append(flags, "⏰ "+n.Reminder.String())
		}
		row := []interface{}{title, faint.Sprint(n.UpdatedAt.String()), faint.Sprint(strings.Join(flags, " "))}
		if pp.ShowID {
			row = append([]interface{}{y.Sprint(n.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Note prints a single note with its content.
func (pp *PrettyPrint) Note(n note.Note) {
	pp.Title(n.DisplayTitle())
	faint := color.New(color.Faint)
	if pp.ShowID {
		_, _ = faint.Fprintln(pp.out(), n.ID)
	}
	_, _ = faint.Fprintf(pp.out(), "Last updated: %s\n", n.UpdatedAt)
	if n.Content != "" {
		_, _ = fmt.Fprintln(pp.out(), n.Content)
	}
	pp.NewLine()
}

// Snapshot prints the session state as a two column table.
func (pp *PrettyPrint) Snapshot(s session.Snapshot, notes, hidden int) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	yesNo := func(b bool) string {
		if b {
			return green.Sprint("yes")
		}
		return red.Sprint("no")
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("State"), s.State.String())
	tbl.AddRow(bold.Sprint("Enrolled"), yesNo(s.Enrolled))
	if s.Profile != nil {
		tbl.AddRow(bold.Sprint("Name"), s.Profile.FirstName+" "+s.Profile.LastName)
	}
	tbl.AddRow(bold.Sprint("PIN"), yesNo(s.HasPIN))
	tbl.AddRow(bold.Sprint("Biometrics"), yesNo(s.Biometric))
	tbl.AddRow(bold.Sprint("Auto-lock"), AutoLock(s.AutoLock))
	tbl.AddRow(bold.Sprint("Notes"), fmt.Sprintf("%d (%d hidden)", notes, hidden))
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// AutoLock names an auto-lock interval the way settings show it.
func AutoLock(d time.Duration) string {
	switch {
	case d <= 0:
		return "Never"
	case d == time.Minute:
		return "1 Minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d Minutes", int(d/time.Minute))
	default:
		return timeutil.Format(d)
	}
}
