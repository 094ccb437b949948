package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/commands/options"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/runner/security"
)

func addPIN(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage your PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	change := &cobra.Command{
		Use:   "change",
		Short: "Replace your PIN; the current one is required",
		Example: `
beho pin change
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				c := security.ChangePIN{Session: e.sess}
				return c.Do(cmd.Context())
			})
		},
	}

	cmd.AddCommand(change)
	topLevel.AddCommand(cmd)
}

func addAutoLock(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "autolock <never|1m|5m|15m|duration>",
		Short: "Lock after this much inactivity",
		Example: `
beho autolock 15m
beho autolock never
`,
		ValidArgs: []string{"never", "1m", "5m", "15m"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			d, err := security.ParseAutoLock(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			return withEnv(func(e *env) error {
				a := security.AutoLock{Session: e.sess, Duration: d}
				return a.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addBiometric(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "biometric <on|off>",
		Short:     "Record whether biometrics may unlock beho",
		ValidArgs: []string{"on", "off"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				b := security.Biometric{Session: e.sess, Enabled: args[0] == "on"}
				return b.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addReset(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:   "reset <security|app>",
		Short: "Erase security settings or all app data",
		Long: options.Wrap80("security removes the PIN and biometric settings and keeps notes. " +
			"app erases everything. Both ask for confirmation unless --yes is given."),
		Example: `
beho reset security
beho reset app --yes
`,
		ValidArgs: []string{string(security.ScopeSecurity), string(security.ScopeApp)},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withEnv(func(e *env) error {
				r := security.Reset{
					Session: e.sess,
					Scope:   security.Scope(args[0]),
					Confirm: prompt.Confirmer{Assume: co.Yes},
				}
				return r.Do(cmd.Context())
			})
		},
	}

	options.AddConfirmArgs(cmd, co)
	topLevel.AddCommand(cmd)
}
