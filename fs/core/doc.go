// Package core defines the capability-oriented storage contract that every
// filestore backend implements.
//
// A backend is a Provider: it has a name, a FSType, and a declared
// CapabilitySet. Each capability corresponds to one small operation interface
// (ByteReader, Lister, Renamer, ...). A backend implements the interfaces for the
// capabilities it declares and nothing else; callers discover operations with a
// type assertion after checking the declared set:
//
//	if p.Capabilities().Has(core.CapStat) {
//	    if s, ok := p.(core.Stater); ok {
//	        info, err := s.Stat(path)
//	        ...
//	    }
//	}
//
// Application code does not do this by hand. The filestore.Store facade checks
// the declared set, dispatches to the backend or to a documented fallback, and
// fails with CodeUnsupported otherwise.
//
// # Paths
//
// Every operation takes a storepath.Path. Backends never see raw strings, so
// they can map a Path onto their own namespace (a directory on disk, a key
// prefix in a bucket) without re-validating it.
//
// # Errors
//
// Backends report failures with the constructors in this package (NotFound,
// IsADirectory, ...) so the error codes are uniform across backends.
package core
