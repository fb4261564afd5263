package metrics

import (
	"io"
	"time"

	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// Instrumented forwards every operation to a provider and records it.
//
// It implements every operation interface but declares exactly the wrapped
// provider's capabilities; an undeclared call reaching it fails Unsupported.
type Instrumented struct {
	inner core.Provider
	m     *Metrics
}

// Instrument wraps p so its operations are recorded in m.
func Instrument(p core.Provider, m *Metrics) *Instrumented {
	return &Instrumented{inner: p, m: m}
}

// Unwrap returns the wrapped provider.
func (i *Instrumented) Unwrap() core.Provider { return i.inner }

// Name implements core.Provider.
func (i *Instrumented) Name() string { return i.inner.Name() }

// Type implements core.Provider.
func (i *Instrumented) Type() core.FSType { return i.inner.Type() }

// Capabilities implements core.Provider.
func (i *Instrumented) Capabilities() core.CapabilitySet { return i.inner.Capabilities() }

// track starts timing op; call the returned function with the final error.
func (i *Instrumented) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		i.m.observe(i.inner.Name(), op, start, err)
	}
}

func (i *Instrumented) unsupported(op string, p storepath.Path, c core.Capability) error {
	return core.Unsupported(op, p, c, i.inner.Name())
}

// ReadBytes implements core.ByteReader.
func (i *Instrumented) ReadBytes(p storepath.Path) (data []byte, err error) {
	done := i.track("read_bytes")
	defer func() { done(err) }()

	r, ok := i.inner.(core.ByteReader)
	if !ok {
		return nil, i.unsupported("read_bytes", p, core.CapReadBytes)
	}
	data, err = r.ReadBytes(p)
	i.m.transferred(i.inner.Name(), "read", len(data))
	return data, err
}

// WriteBytes implements core.ByteWriter.
func (i *Instrumented) WriteBytes(p storepath.Path, data []byte, overwrite bool) (err error) {
	done := i.track("write_bytes")
	defer func() { done(err) }()

	w, ok := i.inner.(core.ByteWriter)
	if !ok {
		return i.unsupported("write_bytes", p, core.CapWriteBytes)
	}
	if err = w.WriteBytes(p, data, overwrite); err == nil {
		i.m.transferred(i.inner.Name(), "write", len(data))
	}
	return err
}

// OpenRead implements core.StreamReader. Bytes are counted as they are read.
func (i *Instrumented) OpenRead(p storepath.Path) (rc io.ReadCloser, err error) {
	done := i.track("open_read")
	defer func() { done(err) }()

	r, ok := i.inner.(core.StreamReader)
	if !ok {
		return nil, i.unsupported("open_read", p, core.CapOpenRead)
	}
	rc, err = r.OpenRead(p)
	if err != nil {
		return nil, err
	}
	return &countingReader{ReadCloser: rc, count: func(n int) { i.m.transferred(i.inner.Name(), "read", n) }}, nil
}

// OpenWrite implements core.StreamWriter. Bytes are counted as they are written.
func (i *Instrumented) OpenWrite(p storepath.Path) (wc io.WriteCloser, err error) {
	done := i.track("open_write")
	defer func() { done(err) }()

	w, ok := i.inner.(core.StreamWriter)
	if !ok {
		return nil, i.unsupported("open_write", p, core.CapOpenWrite)
	}
	wc, err = w.OpenWrite(p)
	if err != nil {
		return nil, err
	}
	return &countingWriter{WriteCloser: wc, count: func(n int) { i.m.transferred(i.inner.Name(), "write", n) }}, nil
}

// Exists implements core.Exister.
func (i *Instrumented) Exists(p storepath.Path) (ok bool, err error) {
	done := i.track("exists")
	defer func() { done(err) }()

	e, impl := i.inner.(core.Exister)
	if !impl {
		return false, i.unsupported("exists", p, core.CapExists)
	}
	return e.Exists(p)
}

// IsDir implements core.DirChecker.
func (i *Instrumented) IsDir(p storepath.Path) (ok bool, err error) {
	done := i.track("is_dir")
	defer func() { done(err) }()

	d, impl := i.inner.(core.DirChecker)
	if !impl {
		return false, i.unsupported("is_dir", p, core.CapIsDir)
	}
	return d.IsDir(p)
}

// IsFile implements core.FileChecker.
func (i *Instrumented) IsFile(p storepath.Path) (ok bool, err error) {
	done := i.track("is_file")
	defer func() { done(err) }()

	f, impl := i.inner.(core.FileChecker)
	if !impl {
		return false, i.unsupported("is_file", p, core.CapIsFile)
	}
	return f.IsFile(p)
}

// Stat implements core.Stater.
func (i *Instrumented) Stat(p storepath.Path) (fi core.FileInfo, err error) {
	done := i.track("stat")
	defer func() { done(err) }()

	s, ok := i.inner.(core.Stater)
	if !ok {
		return core.FileInfo{}, i.unsupported("stat", p, core.CapStat)
	}
	return s.Stat(p)
}

// ListDir implements core.Lister.
func (i *Instrumented) ListDir(p storepath.Path) (names []string, err error) {
	done := i.track("listdir")
	defer func() { done(err) }()

	l, ok := i.inner.(core.Lister)
	if !ok {
		return nil, i.unsupported("listdir", p, core.CapListDir)
	}
	return l.ListDir(p)
}

// MakeDirs implements core.DirMaker.
func (i *Instrumented) MakeDirs(p storepath.Path) (err error) {
	done := i.track("makedirs")
	defer func() { done(err) }()

	m, ok := i.inner.(core.DirMaker)
	if !ok {
		return i.unsupported("makedirs", p, core.CapMakeDirs)
	}
	return m.MakeDirs(p)
}

// Remove implements core.Remover.
func (i *Instrumented) Remove(p storepath.Path) (err error) {
	done := i.track("remove")
	defer func() { done(err) }()

	r, ok := i.inner.(core.Remover)
	if !ok {
		return i.unsupported("remove", p, core.CapRemove)
	}
	return r.Remove(p)
}

// Rmdir implements core.DirRemover.
func (i *Instrumented) Rmdir(p storepath.Path) (err error) {
	done := i.track("rmdir")
	defer func() { done(err) }()

	r, ok := i.inner.(core.DirRemover)
	if !ok {
		return i.unsupported("rmdir", p, core.CapRmdir)
	}
	return r.Rmdir(p)
}

// Rmtree implements core.TreeRemover.
func (i *Instrumented) Rmtree(p storepath.Path) (err error) {
	done := i.track("rmtree")
	defer func() { done(err) }()

	r, ok := i.inner.(core.TreeRemover)
	if !ok {
		return i.unsupported("rmtree", p, core.CapRmtree)
	}
	return r.Rmtree(p)
}

// Rename implements core.Renamer.
func (i *Instrumented) Rename(src, dst storepath.Path) (err error) {
	done := i.track("rename")
	defer func() { done(err) }()

	r, ok := i.inner.(core.Renamer)
	if !ok {
		return i.unsupported("rename", src, core.CapRename)
	}
	return r.Rename(src, dst)
}

type countingReader struct {
	io.ReadCloser
	count func(int)
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.count(n)
	return n, err
}

type countingWriter struct {
	io.WriteCloser
	count func(int)
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.WriteCloser.Write(p)
	w.count(n)
	return n, err
}

// Abort discards the stream when the wrapped writer supports it and closes it
// otherwise.
func (w *countingWriter) Abort() error {
	if a, ok := w.WriteCloser.(core.Aborter); ok {
		return a.Abort()
	}
	return w.WriteCloser.Close()
}

var _ core.Provider = (*Instrumented)(nil)
