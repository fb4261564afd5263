package filestore

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/jmgilman/go/filestore/config"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/secrets"
)

// PluginName is the registry name the Resolver looks up by default.
const PluginName = "providers"

// PluginContext is handed to a Factory.
type PluginContext struct {
	// Config is the configuration the Resolver was built with.
	Config config.Config

	// Secrets is the local secret chain. Plugins should look values up lazily,
	// on first use, rather than inside the factory.
	Secrets secrets.Provider

	// Logger is the Resolver's logger.
	Logger *slog.Logger
}

// Plugin is what a Factory returns.
type Plugin struct {
	// Store is the storage backend. Required.
	Store core.Provider

	// Secrets optionally replaces the local secret chain once the plugin is
	// bound.
	Secrets secrets.Provider
}

// Factory builds a plugin.
type Factory func(PluginContext) (Plugin, error)

// Registry maps names to plugin factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by Register and by resolvers built
// without WithRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register makes a factory available by name. It panics if f is nil or name is
// already registered.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f == nil {
		panic("filestore: Register factory is nil")
	}
	if _, dup := r.factories[name]; dup {
		panic("filestore: Register called twice for plugin " + name)
	}
	r.factories[name] = f
}

// Unregister removes name. It exists for tests.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds f to the default registry.
func Register(name string, f Factory) {
	defaultRegistry.Register(name, f)
}

// Unregister removes name from the default registry. It exists for tests.
func Unregister(name string) {
	defaultRegistry.Unregister(name)
}

// Plugins returns the names in the default registry.
func Plugins() []string {
	return defaultRegistry.Names()
}

// load runs a factory, turning errors and panics into PluginLoadFailure.
// With withStack set a recovered panic carries its stack trace.
func load(name string, f Factory, pc PluginContext, withStack bool) (p Plugin, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ctx := map[string]interface{}{
			"plugin": name,
			"panic":  fmt.Sprint(r),
		}
		if withStack {
			ctx["stack"] = string(debug.Stack())
		}
		p = Plugin{}
		err = errors.WithContextMap(
			errors.Newf(errors.CodePluginLoadFailure, "plugin %q panicked: %v", name, r), ctx)
	}()

	p, err = f(pc)
	if err != nil {
		return Plugin{}, errors.WrapWithContext(err, errors.CodePluginLoadFailure,
			fmt.Sprintf("plugin %q failed to initialize", name),
			map[string]interface{}{"plugin": name})
	}
	if p.Store == nil {
		return Plugin{}, errors.WithContext(
			errors.Newf(errors.CodePluginLoadFailure, "plugin %q returned no store", name), "plugin", name)
	}
	return p, nil
}
