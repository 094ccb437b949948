package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
beho ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				i := ui.UI{Session: e.sess, Notes: e.notes, Store: e.store, Logger: e.log}
				return i.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
