package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/commands/options"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/runner/vault"
)

func addVault(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Hidden notes, behind a second PIN entry",
		Long:  options.Wrap80("Hidden notes, behind a second PIN entry. " + prompt.RetryHelp),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List hidden notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				v := vault.Vault{Session: e.sess, Notes: e.notes}
				return v.Do(cmd.Context())
			})
		},
	}

	open := &cobra.Command{
		Use:   "open <id>",
		Short: "Print a hidden note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				v := vault.Vault{Session: e.sess, Notes: e.notes, Open: args[0]}
				return v.Do(cmd.Context())
			})
		},
	}

	cmd.AddCommand(list, open)
	topLevel.AddCommand(cmd)
}
