package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/runner/info"
	"tableflip.dev/beho/pkg/store"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about where beho keeps its data.",
		Example: `
beho info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := store.LoadConfig()
			if err != nil {
				return oo.HandleError(err)
			}
			p, err := store.Open(cfg)
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{
				Config: cfg,
				Store:  p,
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
