package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/runner/enroll"
)

func addEnroll(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Set up your profile and PIN",
		Example: `
beho enroll
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				r := enroll.Enroll{Session: e.sess}
				return r.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
