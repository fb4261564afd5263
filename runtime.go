package filestore

import (
	"log/slog"
	"sync"

	"github.com/jmgilman/go/filestore/config"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/fs/local"
	"github.com/jmgilman/go/filestore/internal/logging"
	"github.com/jmgilman/go/filestore/metrics"
	"github.com/jmgilman/go/filestore/secrets"
)

// Mode records which kind of backend a Resolver bound.
type Mode int

const (
	// ModeUndetermined means nothing is bound yet.
	ModeUndetermined Mode = iota
	// ModeLocal means the built-in local backend is bound.
	ModeLocal
	// ModePlugin means a registered plugin is bound.
	ModePlugin
)

// String returns "undetermined", "local" or "plugin".
func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModePlugin:
		return "plugin"
	default:
		return "undetermined"
	}
}

// Providers is the outcome of resolution.
type Providers struct {
	Store   *Store
	Secrets secrets.Provider
	Mode    Mode

	// Source describes where the store came from, e.g. "local:/srv/data" or
	// "plugin:providers".
	Source string
}

// LocalFactory builds the provider bound in local mode.
type LocalFactory func(cfg config.Config) (core.Provider, error)

// Resolver decides once between the local backend and a plugin and caches the
// result. It is safe for concurrent use.
type Resolver struct {
	cfg          config.Config
	logger       *slog.Logger
	pluginName   string
	registry     *Registry
	localFactory LocalFactory
	metrics      *metrics.Metrics
	secrets      secrets.Provider
	initErr      error

	mu    sync.Mutex
	bound *Providers
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg config.Config) ResolverOption {
	return func(r *Resolver) {
		r.cfg = cfg
	}
}

// WithResolverLogger sets the logger for resolution diagnostics and for the
// bound Store.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPluginName changes the registry name looked up. The default is PluginName.
func WithPluginName(name string) ResolverOption {
	return func(r *Resolver) {
		r.pluginName = name
	}
}

// WithRegistry sets the plugin registry. The default is DefaultRegistry().
func WithRegistry(reg *Registry) ResolverOption {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// WithLocalFactory replaces the local backend constructor.
func WithLocalFactory(f LocalFactory) ResolverOption {
	return func(r *Resolver) {
		r.localFactory = f
	}
}

// WithMetrics instruments the bound provider with m.
func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithSecrets replaces the local secret chain.
func WithSecrets(p secrets.Provider) ResolverOption {
	return func(r *Resolver) {
		r.secrets = p
	}
}

// NewResolver returns an unbound Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:          config.Default(),
		logger:       logging.Discard(),
		pluginName:   PluginName,
		registry:     defaultRegistry,
		localFactory: newLocal,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil && r.cfg.Metrics {
		r.metrics = metrics.Default()
	}
	return r
}

func newLocal(cfg config.Config) (core.Provider, error) {
	p, err := local.New(cfg.LocalRoot)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the bound providers, resolving on the first call. A failed
// resolution is not cached.
func (r *Resolver) Get() (*Providers, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bound != nil {
		return r.bound, nil
	}
	if r.initErr != nil {
		return nil, r.initErr
	}

	p, err := r.resolve()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("filestore provider bound",
		"mode", p.Mode.String(),
		"source", p.Source,
		"capabilities", p.Store.Capabilities().String())
	r.bound = p
	return p, nil
}

// Mode returns the bound mode without triggering resolution.
func (r *Resolver) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bound == nil {
		return ModeUndetermined
	}
	return r.bound.Mode
}

// Config returns the configuration the Resolver uses.
func (r *Resolver) Config() config.Config {
	return r.cfg
}

// Reset forgets the bound providers so the next Get resolves again.
// It exists for tests.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound = nil
}

func (r *Resolver) resolve() (*Providers, error) {
	sec := r.localSecrets()

	switch r.cfg.UsePlugin {
	case config.PolicyLocal:
		return r.bindLocal(sec)

	case config.PolicyPlugin:
		p, err := r.bindPlugin(sec)
		if err == nil {
			return p, nil
		}
		if !r.cfg.PluginFallback {
			return nil, err
		}
		r.warn("plugin required but unavailable, falling back to local", err)
		return r.bindLocal(sec)

	default:
		if _, ok := r.registry.Lookup(r.pluginName); !ok {
			r.logger.Debug("no filestore plugin registered, using local", "plugin", r.pluginName)
			return r.bindLocal(sec)
		}
		p, err := r.bindPlugin(sec)
		if err == nil {
			return p, nil
		}
		r.warn("filestore plugin failed to load, using local", err)
		return r.bindLocal(sec)
	}
}

func (r *Resolver) bindLocal(sec secrets.Provider) (*Providers, error) {
	provider, err := r.localFactory(r.cfg)
	if err != nil {
		return nil, err
	}

	source := "local"
	if rooted, ok := provider.(interface{ Root() string }); ok && rooted.Root() != "" {
		source = "local:" + rooted.Root()
	}
	return &Providers{
		Store:   r.newStore(provider),
		Secrets: sec,
		Mode:    ModeLocal,
		Source:  source,
	}, nil
}

func (r *Resolver) bindPlugin(sec secrets.Provider) (*Providers, error) {
	f, ok := r.registry.Lookup(r.pluginName)
	if !ok {
		return nil, errors.WithContextMap(
			errors.Newf(errors.CodePluginLoadFailure, "no plugin registered under %q", r.pluginName),
			map[string]interface{}{"plugin": r.pluginName, "registered": r.registry.Names()},
		)
	}

	pl, err := load(r.pluginName, f, PluginContext{
		Config:  r.cfg,
		Secrets: sec,
		Logger:  r.logger,
	}, r.cfg.DebugPlugin)
	if err != nil {
		return nil, err
	}

	if pl.Secrets != nil {
		sec = pl.Secrets
	}
	return &Providers{
		Store:   r.newStore(pl.Store),
		Secrets: sec,
		Mode:    ModePlugin,
		Source:  "plugin:" + r.pluginName,
	}, nil
}

func (r *Resolver) newStore(p core.Provider) *Store {
	if r.metrics != nil {
		p = metrics.Instrument(p, r.metrics)
	}
	return New(p,
		WithShare(r.cfg.Share),
		WithLogger(r.logger),
		WithAutoInstall(r.cfg.AutoInstall))
}

// localSecrets builds env, keyring and prompt lookups behind a cache.
func (r *Resolver) localSecrets() secrets.Provider {
	if r.secrets != nil {
		return r.secrets
	}
	chain := []secrets.Provider{secrets.Env{Prefix: secrets.DefaultEnvPrefix}}
	if r.cfg.KeyringService != "" {
		chain = append(chain, secrets.Keyring{Service: r.cfg.KeyringService})
	}
	if !r.cfg.NonInteractive {
		chain = append(chain, secrets.NewPrompt())
	}
	return secrets.Cached(secrets.Chain(chain...))
}

// warn logs a plugin failure, tersely unless DebugPlugin is set.
func (r *Resolver) warn(msg string, err error) {
	if !r.cfg.DebugPlugin {
		r.logger.Warn(msg,
			"plugin", r.pluginName,
			"code", string(errors.GetCode(err)),
			"hint", "set "+config.EnvDebugPlugin+"=1 for details")
		return
	}

	args := []any{"plugin", r.pluginName, "error", err.Error()}
	var pe errors.PlatformError
	if errors.As(err, &pe) {
		for k, v := range pe.Context() {
			args = append(args, k, v)
		}
	}
	r.logger.Warn(msg, args...)
}

var (
	defaultMu       sync.Mutex
	defaultResolver *Resolver
)

// Default returns the process-wide Resolver, configured from the environment
// on first use and logging to stderr at the configured level.
func Default() *Resolver {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultResolver == nil {
		cfg, err := config.FromEnv()
		if err != nil {
			cfg = config.Default()
		}
		defaultResolver = NewResolver(
			WithConfig(cfg),
			WithResolverLogger(logging.Stderr(cfg.LogLevel)),
		)
		defaultResolver.initErr = err
	}
	return defaultResolver
}

// SetDefault replaces the process-wide Resolver. Commands that build their own
// configuration call it before any other filestore function.
func SetDefault(r *Resolver) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultResolver = r
}

// ResetDefault discards the process-wide Resolver. It exists for tests.
func ResetDefault() {
	SetDefault(nil)
}

// Active returns the process-wide bound providers.
func Active() (*Providers, error) {
	return Default().Get()
}

// ActiveStore returns the process-wide Store.
func ActiveStore() (*Store, error) {
	p, err := Active()
	if err != nil {
		return nil, err
	}
	return p.Store, nil
}

// ActiveSecrets returns the process-wide secret provider.
func ActiveSecrets() (secrets.Provider, error) {
	p, err := Active()
	if err != nil {
		return nil, err
	}
	return p.Secrets, nil
}
