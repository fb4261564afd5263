package core

import (
	"io"
	"time"

	"github.com/jmgilman/go/filestore/storepath"
)

// Provider is a storage backend.
//
// Capabilities is authoritative: an operation whose capability is not declared
// is treated as absent even if the value happens to implement the interface.
// Providers must be safe for concurrent use.
type Provider interface {
	// Name identifies the backend in errors and diagnostics ("local", "minio").
	Name() string

	// Type returns the kind of storage behind the provider.
	Type() FSType

	// Capabilities returns the declared operation set.
	Capabilities() CapabilitySet
}

// ByteReader implements CapReadBytes.
type ByteReader interface {
	// ReadBytes returns the whole content of the file at p.
	// It fails NotFound if p is absent and IsADirectory if p is a directory.
	ReadBytes(p storepath.Path) ([]byte, error)
}

// ByteWriter implements CapWriteBytes.
type ByteWriter interface {
	// WriteBytes stores data at p, creating parent directories.
	// With overwrite false it fails AlreadyExists if p exists.
	// It fails IsADirectory if p is a directory.
	WriteBytes(p storepath.Path, data []byte, overwrite bool) error
}

// StreamReader implements CapOpenRead.
type StreamReader interface {
	// OpenRead opens p for reading. The caller must Close the reader.
	OpenRead(p storepath.Path) (io.ReadCloser, error)
}

// StreamWriter implements CapOpenWrite.
type StreamWriter interface {
	// OpenWrite creates or truncates p, creating parent directories.
	// Data is committed when Close returns nil.
	OpenWrite(p storepath.Path) (io.WriteCloser, error)
}

// Aborter is implemented by writers returned from OpenWrite that can discard
// what was written. After Abort the target holds whatever it held before
// OpenWrite, and Close is a no-op.
type Aborter interface {
	Abort() error
}

// Exister implements CapExists.
type Exister interface {
	Exists(p storepath.Path) (bool, error)
}

// DirChecker implements CapIsDir.
type DirChecker interface {
	IsDir(p storepath.Path) (bool, error)
}

// FileChecker implements CapIsFile.
type FileChecker interface {
	IsFile(p storepath.Path) (bool, error)
}

// Stater implements CapStat.
type Stater interface {
	Stat(p storepath.Path) (FileInfo, error)
}

// Lister implements CapListDir.
type Lister interface {
	// ListDir returns the entry names of directory p, sorted.
	// It fails NotFound if p is absent and NotADirectory if p is a file.
	ListDir(p storepath.Path) ([]string, error)
}

// DirMaker implements CapMakeDirs.
type DirMaker interface {
	// MakeDirs creates p and any missing parents. Existing directories are not
	// an error; an existing file at p or at a parent fails NotADirectory.
	MakeDirs(p storepath.Path) error
}

// Remover implements CapRemove.
type Remover interface {
	// Remove deletes the file at p. It fails NotFound if p is absent and
	// IsADirectory if p is a directory.
	Remove(p storepath.Path) error
}

// DirRemover implements CapRmdir.
type DirRemover interface {
	// Rmdir deletes the empty directory p. It fails DirectoryNotEmpty when p
	// has entries, NotADirectory when p is a file, NotFound when absent.
	Rmdir(p storepath.Path) error
}

// TreeRemover implements CapRmtree.
type TreeRemover interface {
	// Rmtree deletes directory p and everything below it. An absent p is not
	// an error; a file at p fails NotADirectory.
	Rmtree(p storepath.Path) error
}

// Renamer implements CapRename.
type Renamer interface {
	// Rename moves src to dst, creating dst's parents. It fails NotFound for a
	// missing src and AlreadyExists when dst exists.
	Rename(src, dst storepath.Path) error
}

// Implemented returns the capabilities whose operation interface v satisfies,
// regardless of what v declares.
func Implemented(v any) CapabilitySet {
	var s CapabilitySet
	add := func(ok bool, c Capability) {
		if ok {
			s = s.With(c)
		}
	}
	_, ok := v.(ByteReader)
	add(ok, CapReadBytes)
	_, ok = v.(ByteWriter)
	add(ok, CapWriteBytes)
	_, ok = v.(StreamReader)
	add(ok, CapOpenRead)
	_, ok = v.(StreamWriter)
	add(ok, CapOpenWrite)
	_, ok = v.(Exister)
	add(ok, CapExists)
	_, ok = v.(DirChecker)
	add(ok, CapIsDir)
	_, ok = v.(FileChecker)
	add(ok, CapIsFile)
	_, ok = v.(Stater)
	add(ok, CapStat)
	_, ok = v.(Lister)
	add(ok, CapListDir)
	_, ok = v.(DirMaker)
	add(ok, CapMakeDirs)
	_, ok = v.(Remover)
	add(ok, CapRemove)
	_, ok = v.(DirRemover)
	add(ok, CapRmdir)
	_, ok = v.(TreeRemover)
	add(ok, CapRmtree)
	_, ok = v.(Renamer)
	add(ok, CapRename)
	return s
}

// Kind distinguishes files from directories.
type Kind int

const (
	// KindFile is a regular file.
	KindFile Kind = iota
	// KindDir is a directory (or a virtual directory prefix).
	KindDir
)

// String returns "file" or "dir".
func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// FileInfo is the metadata returned by Stat. Backends that cannot report a
// modification time leave ModTime zero; directories report Size 0.
type FileInfo struct {
	Path    storepath.Path
	Size    int64
	ModTime time.Time
	Kind    Kind
}

// IsDir reports whether the entry is a directory.
func (fi FileInfo) IsDir() bool {
	return fi.Kind == KindDir
}
