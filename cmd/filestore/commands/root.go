package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand returns the filestore command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "filestore",
		Short: "Inspect and edit files through the bound storage backend",
		Long: `filestore runs file operations against the backend the resolver binds:
the local directory, or a registered plugin such as MinIO.

Paths may be typed relative to the store root or pasted as UNC paths, file://
URIs or drive-letter paths; they are normalized the same way the library does.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.ConfigFile, "config", "", "YAML configuration file")
	flags.BoolVar(&app.Debug, "debug", false, "Enable debug logging and detailed plugin errors")
	flags.StringVar(&app.Share, "share", "", "Share name stripped from pasted network paths")
	flags.BoolVar(&app.Local, "local", false, "Force the local backend")
	flags.BoolVar(&app.Plugin, "plugin", false, "Require the plugin backend")
	flags.BoolVar(&app.JSONErrors, "json-errors", false, "Report failures as JSON on stderr")

	root.AddCommand(
		NewLsCommand(app),
		NewCatCommand(app),
		NewPutCommand(app),
		NewCpCommand(app),
		NewMvCommand(app),
		NewRmCommand(app),
		NewMkdirCommand(app),
		NewStatCommand(app),
		NewFindCommand(app),
		NewCapsCommand(app),
		NewNormalizeCommand(app),
	)
	return root
}
