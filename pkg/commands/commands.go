package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/commands/options"
	"tableflip.dev/beho/pkg/runner/prompt"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "beho",
		Short: options.Wrap80("Private notes behind a PIN, with an idle auto-lock and a hidden notes vault."),
		Long: options.Wrap80("Private notes behind a PIN, with an idle auto-lock and a hidden notes vault. " +
			"Commands that read or change notes ask for the PIN first. " + prompt.RetryHelp),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addEnroll(topLevel)
	addStatus(topLevel)
	addPIN(topLevel)
	addAutoLock(topLevel)
	addBiometric(topLevel)
	addReset(topLevel)
	addNote(topLevel)
	addVault(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
	addCompletions(topLevel)
}
