package commands

import (
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/filestore/errors"
)

// NewCpCommand copies a file.
func NewCpCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy a file, replacing the destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			return store.Copy(args[0], args[1])
		},
	}
}

// NewMvCommand renames a file or directory.
func NewMvCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst>",
		Short: "Move a file or directory",
		Long: `Move renames src to dst. The destination must not exist. Backends
without a native rename copy then delete; if that fails part way the error
reports how many entries were copied.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			return store.Rename(args[0], args[1])
		},
	}
}

// NewRmCommand removes files, empty directories (-d) or trees (-r).
func NewRmCommand(app *App) *cobra.Command {
	var recursive, dir bool

	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recursive && dir {
				return errors.New(errors.CodeInvalidInput, "-r and -d are mutually exclusive")
			}
			store, err := app.Store()
			if err != nil {
				return err
			}

			remove := store.Remove
			switch {
			case recursive:
				remove = store.Rmtree
			case dir:
				remove = store.Rmdir
			}
			for _, path := range args {
				if err := remove(path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Remove directories and their contents")
	cmd.Flags().BoolVarP(&dir, "dir", "d", false, "Remove empty directories")
	return cmd
}
