package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/filestore/errors"
)

// NewPutCommand stores standard input or a local file at a path.
func NewPutCommand(app *App) *cobra.Command {
	var (
		from      string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "Write standard input (or --from) to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}

			src := cmd.InOrStdin()
			if from != "" {
				f, err := os.Open(from)
				if err != nil {
					return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to open source file",
						map[string]interface{}{"file": from})
				}
				defer func() {
					_ = f.Close()
				}()
				src = f
			}

			data, err := io.ReadAll(src)
			if err != nil {
				return errors.Wrap(err, errors.CodeInvalidInput, "failed to read input")
			}
			return store.WriteBytes(args[0], data, overwrite)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Read content from this local file instead of stdin")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// NewMkdirCommand creates directories with their parents.
func NewMkdirCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>...",
		Short: "Create directories and missing parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := store.MakeDirs(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
