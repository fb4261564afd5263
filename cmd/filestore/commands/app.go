package commands

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/config"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/internal/logging"
	"github.com/jmgilman/go/filestore/storepath"
)

// App holds the global flags and the resolver shared by every command.
type App struct {
	ConfigFile string
	Debug      bool
	Share      string
	Local      bool
	Plugin     bool
	JSONErrors bool

	// Resolver is built from the flags on first use unless set beforehand.
	Resolver *filestore.Resolver
}

// Config loads the configuration file (or the environment alone) and applies
// the flag overrides.
func (a *App) Config() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if a.ConfigFile != "" {
		cfg, err = config.Load(a.ConfigFile)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return config.Config{}, err
	}

	switch {
	case a.Local && a.Plugin:
		return config.Config{}, errors.New(errors.CodeInvalidInput, "--local and --plugin are mutually exclusive")
	case a.Local:
		cfg.UsePlugin = config.PolicyLocal
	case a.Plugin:
		cfg.UsePlugin = config.PolicyPlugin
	}
	if a.Share != "" {
		cfg.Share = a.Share
	}
	if a.Debug {
		cfg.DebugPlugin = true
		cfg.LogLevel = slog.LevelDebug
	}
	if !interactive() {
		cfg.NonInteractive = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// resolver returns the App's resolver, building it and installing it as the
// process-wide default on first use.
func (a *App) resolver() (*filestore.Resolver, error) {
	if a.Resolver != nil {
		return a.Resolver, nil
	}

	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	a.Resolver = filestore.NewResolver(
		filestore.WithConfig(cfg),
		filestore.WithResolverLogger(logging.Stderr(cfg.LogLevel)),
	)
	filestore.SetDefault(a.Resolver)
	return a.Resolver, nil
}

// Providers resolves the backend.
func (a *App) Providers() (*filestore.Providers, error) {
	r, err := a.resolver()
	if err != nil {
		return nil, err
	}
	return r.Get()
}

// Store resolves the backend and returns its Store.
func (a *App) Store() (*filestore.Store, error) {
	p, err := a.Providers()
	if err != nil {
		return nil, err
	}
	return p.Store, nil
}

// display renders p for output, showing the root as "/".
func display(p storepath.Path) string {
	if p.IsRoot() {
		return "/"
	}
	return p.String()
}
