package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/filestore"
)

// NewCapsCommand prints how the bound backend was chosen and what it supports.
func NewCapsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "Show the bound backend and its capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Providers()
			if err != nil {
				return err
			}

			plugins := "none"
			if names := filestore.Plugins(); len(names) > 0 {
				plugins = strings.Join(names, ",")
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "mode:\t%s\n", p.Mode)
			_, _ = fmt.Fprintf(w, "source:\t%s\n", p.Source)
			_, _ = fmt.Fprintf(w, "plugins:\t%s\n", plugins)
			if err := w.Flush(); err != nil {
				return err
			}
			return p.Store.DebugPrintCapabilities(out)
		},
	}
}

// NewNormalizeCommand prints the store path each raw argument resolves to.
func NewNormalizeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <raw>...",
		Short: "Show how raw paths are normalized",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			for _, raw := range args {
				p, err := store.Normalize(raw)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), display(p))
			}
			return nil
		},
	}
}
