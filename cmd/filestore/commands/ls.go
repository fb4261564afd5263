package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// NewLsCommand lists a directory.
func NewLsCommand(app *App) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}

			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			p, err := store.Normalize(dir)
			if err != nil {
				return err
			}
			names, err := store.ListDir(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !long {
				for _, name := range names {
					_, _ = fmt.Fprintln(out, name)
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "KIND\tSIZE\tMODIFIED\tNAME\n")
			for _, name := range names {
				fi, err := statChild(store, p, name)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fi.Kind, size(fi), modified(fi), name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show kind, size and modification time")
	return cmd
}

func statChild(store *filestore.Store, dir storepath.Path, name string) (core.FileInfo, error) {
	child, err := dir.Join(name)
	if err != nil {
		return core.FileInfo{}, err
	}
	return store.Stat(child.String())
}

func size(fi core.FileInfo) string {
	if fi.IsDir() {
		return "-"
	}
	return fmt.Sprint(fi.Size)
}

func modified(fi core.FileInfo) string {
	if fi.ModTime.IsZero() {
		return "-"
	}
	return fi.ModTime.UTC().Format(time.RFC3339)
}
