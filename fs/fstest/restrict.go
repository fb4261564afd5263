package fstest

import (
	"io"

	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// Restricted wraps a provider and declares fewer capabilities than it has.
// Every operation is still forwarded, so a Store that honors the declared set
// must reach the hidden ones through its fallbacks.
type Restricted struct {
	inner core.Provider
	caps  core.CapabilitySet
}

// Restrict returns p with the capabilities in drop hidden.
func Restrict(p core.Provider, drop ...core.Capability) *Restricted {
	return &Restricted{inner: p, caps: p.Capabilities().Without(drop...)}
}

// RestrictTo returns p declaring only keep.
func RestrictTo(p core.Provider, keep ...core.Capability) *Restricted {
	return &Restricted{inner: p, caps: p.Capabilities() & core.NewCapabilitySet(keep...)}
}

// Name reports the wrapped provider's name with a "-restricted" suffix.
func (r *Restricted) Name() string { return r.inner.Name() + "-restricted" }

// Type returns the wrapped provider's type.
func (r *Restricted) Type() core.FSType { return r.inner.Type() }

// Capabilities returns the reduced set.
func (r *Restricted) Capabilities() core.CapabilitySet { return r.caps }

// Unwrap returns the wrapped provider.
func (r *Restricted) Unwrap() core.Provider { return r.inner }

func (r *Restricted) unsupported(op string, p storepath.Path, c core.Capability) error {
	return core.Unsupported(op, p, c, r.Name())
}

func (r *Restricted) ReadBytes(p storepath.Path) ([]byte, error) {
	if v, ok := r.inner.(core.ByteReader); ok {
		return v.ReadBytes(p)
	}
	return nil, r.unsupported("read", p, core.CapReadBytes)
}

func (r *Restricted) WriteBytes(p storepath.Path, data []byte, overwrite bool) error {
	if v, ok := r.inner.(core.ByteWriter); ok {
		return v.WriteBytes(p, data, overwrite)
	}
	return r.unsupported("write", p, core.CapWriteBytes)
}

func (r *Restricted) OpenRead(p storepath.Path) (io.ReadCloser, error) {
	if v, ok := r.inner.(core.StreamReader); ok {
		return v.OpenRead(p)
	}
	return nil, r.unsupported("open_read", p, core.CapOpenRead)
}

func (r *Restricted) OpenWrite(p storepath.Path) (io.WriteCloser, error) {
	if v, ok := r.inner.(core.StreamWriter); ok {
		return v.OpenWrite(p)
	}
	return nil, r.unsupported("open_write", p, core.CapOpenWrite)
}

func (r *Restricted) Exists(p storepath.Path) (bool, error) {
	if v, ok := r.inner.(core.Exister); ok {
		return v.Exists(p)
	}
	return false, r.unsupported("exists", p, core.CapExists)
}

func (r *Restricted) IsDir(p storepath.Path) (bool, error) {
	if v, ok := r.inner.(core.DirChecker); ok {
		return v.IsDir(p)
	}
	return false, r.unsupported("is_dir", p, core.CapIsDir)
}

func (r *Restricted) IsFile(p storepath.Path) (bool, error) {
	if v, ok := r.inner.(core.FileChecker); ok {
		return v.IsFile(p)
	}
	return false, r.unsupported("is_file", p, core.CapIsFile)
}

func (r *Restricted) Stat(p storepath.Path) (core.FileInfo, error) {
	if v, ok := r.inner.(core.Stater); ok {
		return v.Stat(p)
	}
	return core.FileInfo{}, r.unsupported("stat", p, core.CapStat)
}

func (r *Restricted) ListDir(p storepath.Path) ([]string, error) {
	if v, ok := r.inner.(core.Lister); ok {
		return v.ListDir(p)
	}
	return nil, r.unsupported("listdir", p, core.CapListDir)
}

func (r *Restricted) MakeDirs(p storepath.Path) error {
	if v, ok := r.inner.(core.DirMaker); ok {
		return v.MakeDirs(p)
	}
	return r.unsupported("makedirs", p, core.CapMakeDirs)
}

func (r *Restricted) Remove(p storepath.Path) error {
	if v, ok := r.inner.(core.Remover); ok {
		return v.Remove(p)
	}
	return r.unsupported("remove", p, core.CapRemove)
}

func (r *Restricted) Rmdir(p storepath.Path) error {
	if v, ok := r.inner.(core.DirRemover); ok {
		return v.Rmdir(p)
	}
	return r.unsupported("rmdir", p, core.CapRmdir)
}

func (r *Restricted) Rmtree(p storepath.Path) error {
	if v, ok := r.inner.(core.TreeRemover); ok {
		return v.Rmtree(p)
	}
	return r.unsupported("rmtree", p, core.CapRmtree)
}

func (r *Restricted) Rename(src, dst storepath.Path) error {
	if v, ok := r.inner.(core.Renamer); ok {
		return v.Rename(src, dst)
	}
	return r.unsupported("rename", src, core.CapRename)
}
