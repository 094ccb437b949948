// Package info reports where beho keeps its data.
package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/beho/pkg/store"
)

type Info struct {
	Config store.Config
	Store  store.Store
	Out    io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("BEHO_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "BEHO_CONFIG_PATH found on env, using ", override)
	} else {
		_, _ = fmt.Fprintln(out, "BEHO_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Config.path"), n.Config.BasePath())
	tbl.AddRow(bold.Sprint("Data"), n.Config.DataPath())
	tbl.AddRow(bold.Sprint("Logs"), n.Config.LogPath())
	_, _ = fmt.Fprintln(out, tbl)

	if n.Store == nil {
		return fmt.Errorf("failed to create store")
	}

	_, _ = fmt.Fprintf(out, "Keys:\n")
	keys := n.Store.Keys(ctx)
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "  %s\n", k)
	}
	if len(keys) == 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", "no keys")
	}
	return nil
}
