// Command filestore inspects and edits the bound filestore from the shell.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jmgilman/go/filestore/cmd/filestore/commands"
	fsminio "github.com/jmgilman/go/filestore/fs/minio"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &commands.App{}
	if err := run(app); err != nil {
		commands.Report(os.Stderr, err, app.JSONErrors)
		os.Exit(commands.ExitCode(err))
	}
}

func run(app *commands.App) error {
	fsminio.Register()

	root := commands.NewRootCommand(app)
	root.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	return root.Execute()
}
