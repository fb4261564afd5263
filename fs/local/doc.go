// Package local provides the built-in filestore backend on top of go-billy.
//
// New binds a directory on disk through osfs with BoundOS, so every Path is
// resolved under the configured root and symlinks cannot climb out of it.
// NewMemory binds an in-process memfs tree, used by tests and dry runs.
//
// The disk provider declares every capability. The memory provider declares
// everything except rename, so callers going through filestore.Store exercise
// the copy-then-delete fallback against it.
//
// Both providers are safe for concurrent use. Streams returned by OpenRead and
// OpenWrite are not.
package local
