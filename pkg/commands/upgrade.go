package commands

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

const installPath = "tableflip.dev/beho/cmd/beho"

func addUpgrade(topLevel *cobra.Command) {
	var ref string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Reinstall beho with go install.",
		Example: `
beho upgrade
beho upgrade --ref v0.2.0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ex := exec.CommandContext(cmd.Context(), "go", "install", installPath+"@"+ref)
			var out bytes.Buffer
			ex.Stdout = &out
			ex.Stderr = &out
			if err := ex.Run(); err != nil {
				return oo.HandleError(fmt.Errorf("upgrade: %s: %w\n%s", ex.String(), err, out.String()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s@%s\n", installPath, ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "latest", "Version, branch or commit to install.")

	topLevel.AddCommand(cmd)
}
