package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/commands/options"
	"tableflip.dev/beho/pkg/runner/status"
)

func addStatus(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show enrollment, lock and auto-lock settings",
		Example: `
beho status
beho status --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				s := status.Status{Session: e.sess, Notes: e.notes, JSON: oo.JSON}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
