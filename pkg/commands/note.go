package commands

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/commands/options"
	"tableflip.dev/beho/pkg/runner/notes"
)

func addNote(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Work with notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addNoteAdd(cmd)
	addNoteList(cmd)
	addNoteShow(cmd)
	addNoteHide(cmd, "hide", true)
	addNoteHide(cmd, "unhide", false)
	addNoteDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addNoteAdd(parent *cobra.Command) {
	no := &options.NoteOptions{}
	var title string

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a note",
		Example: `
beho note add groceries --content "milk, eggs"
beho note add diary --hidden
beho note add call mom --remind 18:30
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a title")
			}
			title = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			remind, err := no.GetRemind(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}
			return withEnv(func(e *env) error {
				a := notes.Add{
					Session: e.sess,
					Notes:   e.notes,
					Title:   title,
					Content: no.Content,
					Hidden:  no.Hidden,
					Remind:  remind,
				}
				return a.Do(cmd.Context())
			})
		},
	}

	options.AddNoteArgs(cmd, no)
	parent.AddCommand(cmd)
}

func addNoteList(parent *cobra.Command) {
	ido := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes that are not in the vault",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				l := notes.List{Session: e.sess, Notes: e.notes, ShowID: ido.ShowID}
				return l.Do(cmd.Context())
			})
		},
	}

	options.AddShowIDArgs(cmd, ido)
	parent.AddCommand(cmd)
}

func addNoteShow(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				s := notes.Show{Session: e.sess, Notes: e.notes, ID: args[0]}
				return s.Do(cmd.Context())
			})
		},
	}

	parent.AddCommand(cmd)
}

func addNoteHide(parent *cobra.Command, use string, hidden bool) {
	short := "Move a note into the vault"
	if !hidden {
		short = "Move a note out of the vault"
	}
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				h := notes.SetHidden{Session: e.sess, Notes: e.notes, ID: args[0], Hidden: hidden}
				return h.Do(cmd.Context())
			})
		},
	}

	parent.AddCommand(cmd)
}

func addNoteDelete(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				d := notes.Delete{Session: e.sess, Notes: e.notes, ID: args[0]}
				return d.Do(cmd.Context())
			})
		},
	}

	parent.AddCommand(cmd)
}
