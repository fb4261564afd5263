// Package filestore gives application code one storage-agnostic API for files
// and directories while the backend is chosen once, centrally.
//
// # Store
//
// A Store wraps a core.Provider. Every method takes a raw path string, runs it
// through a storepath.Normalizer, checks the provider's declared capabilities
// and then either calls the provider or synthesizes the operation from the
// primitives it does declare:
//
//	store := filestore.New(local.NewMemory(), filestore.WithShare("ABC"))
//	if err := store.WriteBytes(`\\fileserver\ABC\Reports\q1.csv`, data, false); err != nil {
//	    return err
//	}
//	names, err := store.ListDir("Reports") // ["q1.csv"]
//
// Operations with no declared capability and no fallback fail with
// errors.CodeUnsupported. Capabilities, Supports and CapabilityReport answer
// the question before the call is made.
//
// # Resolver
//
// The Resolver binds the process to either the built-in local backend or a
// plugin registered under PluginName. Default returns the process-wide
// Resolver configured from the environment; ActiveStore is the usual entry
// point:
//
//	store, err := filestore.ActiveStore()
//
// Plugins register themselves from an init function or from main, in the style
// of database/sql drivers:
//
//	func init() { filestore.Register(filestore.PluginName, myFactory) }
//
// Without a registered plugin the resolver binds the local backend silently
// unless configuration forces plugin mode.
package filestore
