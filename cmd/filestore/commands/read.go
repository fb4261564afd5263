package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCatCommand streams files to standard output.
func NewCatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>...",
		Short: "Print file contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			for _, path := range args {
				r, err := store.OpenRead(path)
				if err != nil {
					return err
				}
				_, err = io.Copy(cmd.OutOrStdout(), r)
				_ = r.Close()
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewStatCommand prints the metadata of one entry.
func NewStatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show file or directory metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			fi, err := store.Stat(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			_, _ = fmt.Fprintf(w, "path:\t%s\n", display(fi.Path))
			_, _ = fmt.Fprintf(w, "kind:\t%s\n", fi.Kind)
			_, _ = fmt.Fprintf(w, "size:\t%s\n", size(fi))
			_, _ = fmt.Fprintf(w, "modified:\t%s\n", modified(fi))
			return w.Flush()
		},
	}
}

// NewFindCommand prints the paths matching a glob pattern.
func NewFindCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "find <pattern>",
		Short: "Find paths matching a glob pattern",
		Long: `Find prints every path matching the pattern, sorted. Segments use
path.Match syntax; a "**" segment matches any number of directories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			matches, err := store.Glob(args[0])
			if err != nil {
				return err
			}
			for _, m := range matches {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}
