package local

import (
	"bytes"
	stderrors "errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// Name is the provider name reported by both constructors unless overridden.
const Name = "local"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Provider is a core.Provider backed by a billy.Filesystem.
type Provider struct {
	bfs    billy.Filesystem
	name   string
	root   string
	fsType core.FSType
	caps   core.CapabilitySet

	// mu serializes access to memfs, which keeps no locks of its own.
	// It is nil for disk providers.
	mu *sync.RWMutex
}

// Option configures a Provider.
type Option func(*Provider)

// WithName overrides the provider name used in errors and diagnostics.
func WithName(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.name = name
		}
	}
}

// New returns a provider rooted at the directory root. An empty root means the
// current working directory. The directory must already exist.
func New(root string, opts ...Option) (*Provider, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to determine working directory")
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid local root",
			map[string]interface{}{"root": root})
	}

	info, err := os.Stat(abs)
	switch {
	case err != nil:
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "local root is not accessible",
			map[string]interface{}{"root": abs})
	case !info.IsDir():
		return nil, errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "local root is not a directory"), "root", abs)
	}

	p := &Provider{
		bfs:    osfs.New(abs, osfs.WithBoundOS()),
		name:   Name,
		root:   abs,
		fsType: core.FSTypeLocal,
		caps:   core.AllCapabilities(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewMemory returns an empty in-memory provider.
func NewMemory(opts ...Option) *Provider {
	p := &Provider{
		bfs:    memfs.New(),
		name:   Name,
		fsType: core.FSTypeMemory,
		caps:   core.AllCapabilities().Without(core.CapRename),
		mu:     &sync.RWMutex{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements core.Provider.
func (l *Provider) Name() string { return l.name }

// Type implements core.Provider.
func (l *Provider) Type() core.FSType { return l.fsType }

// Capabilities implements core.Provider.
func (l *Provider) Capabilities() core.CapabilitySet { return l.caps }

// Root returns the absolute directory a disk provider is bound to, or "" for
// a memory provider.
func (l *Provider) Root() string { return l.root }

// Unwrap returns the underlying billy.Filesystem for callers that need
// billy-specific functionality.
func (l *Provider) Unwrap() billy.Filesystem { return l.bfs }

func (l *Provider) lock() func() {
	if l.mu == nil {
		return func() {}
	}
	l.mu.Lock()
	return l.mu.Unlock
}

func (l *Provider) rlock() func() {
	if l.mu == nil {
		return func() {}
	}
	l.mu.RLock()
	return l.mu.RUnlock
}

// bpath maps a store path onto the billy namespace.
func bpath(p storepath.Path) string {
	if p.IsRoot() {
		return "/"
	}
	return p.String()
}

// translate maps a billy or os error onto a filestore error for op on p.
func translate(err error, op string, p storepath.Path) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, iofs.ErrNotExist):
		return core.NotFound(op, p)
	case stderrors.Is(err, iofs.ErrExist):
		return core.AlreadyExists(op, p)
	case stderrors.Is(err, syscall.ENOTDIR):
		return core.NotADirectory(op, p)
	case stderrors.Is(err, syscall.EISDIR):
		return core.IsADirectory(op, p)
	case stderrors.Is(err, syscall.ENOTEMPTY):
		return core.DirectoryNotEmpty(op, p)
	case stderrors.Is(err, iofs.ErrPermission):
		return core.Wrap(err, errors.CodePermission, op, p)
	}
	return core.Wrap(err, errors.CodeInternal, op, p)
}

// inspect stats p. A missing entry, or a parent that is a file, is reported as
// (nil, nil).
func (l *Provider) inspect(op string, p storepath.Path) (os.FileInfo, error) {
	info, err := l.bfs.Stat(bpath(p))
	if err == nil {
		return info, nil
	}
	if stderrors.Is(err, iofs.ErrNotExist) || stderrors.Is(err, syscall.ENOTDIR) {
		return nil, nil
	}
	return nil, translate(err, op, p)
}

// ReadBytes implements core.ByteReader.
func (l *Provider) ReadBytes(p storepath.Path) ([]byte, error) {
	defer l.rlock()()
	return l.readBytes(p)
}

func (l *Provider) readBytes(p storepath.Path) ([]byte, error) {
	const op = "read"
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return nil, err
	case info == nil:
		return nil, core.NotFound(op, p)
	case info.IsDir():
		return nil, core.IsADirectory(op, p)
	}

	data, err := util.ReadFile(l.bfs, bpath(p))
	if err != nil {
		return nil, translate(err, op, p)
	}
	return data, nil
}

// WriteBytes implements core.ByteWriter.
func (l *Provider) WriteBytes(p storepath.Path, data []byte, overwrite bool) error {
	defer l.lock()()
	return l.writeBytes(p, data, overwrite)
}

func (l *Provider) writeBytes(p storepath.Path, data []byte, overwrite bool) error {
	const op = "write"
	f, err := l.create(op, p, overwrite)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return translate(err, op, p)
	}
	return translate(f.Close(), op, p)
}

// create opens p for writing after checking that it is not a directory and
// creating its parents.
func (l *Provider) create(op string, p storepath.Path, overwrite bool) (billy.File, error) {
	if p.IsRoot() {
		return nil, core.IsADirectory(op, p)
	}
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return nil, err
	case info != nil && info.IsDir():
		return nil, core.IsADirectory(op, p)
	case info != nil && !overwrite:
		return nil, core.AlreadyExists(op, p)
	}

	if err := l.makeDirs(op, p.Dir()); err != nil {
		return nil, err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := l.bfs.OpenFile(bpath(p), flags, filePerm)
	if err != nil {
		return nil, translate(err, op, p)
	}
	return f, nil
}

// OpenRead implements core.StreamReader. Memory providers return a snapshot
// of the file taken when OpenRead is called.
func (l *Provider) OpenRead(p storepath.Path) (io.ReadCloser, error) {
	defer l.rlock()()

	if l.mu != nil {
		data, err := l.readBytes(p)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	const op = "open_read"
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return nil, err
	case info == nil:
		return nil, core.NotFound(op, p)
	case info.IsDir():
		return nil, core.IsADirectory(op, p)
	}

	f, err := l.bfs.Open(bpath(p))
	if err != nil {
		return nil, translate(err, op, p)
	}
	return f, nil
}

// OpenWrite implements core.StreamWriter. Memory providers buffer the stream
// and store it when the writer is closed. Disk providers stream into a
// temporary sibling file that replaces the target on Close.
func (l *Provider) OpenWrite(p storepath.Path) (io.WriteCloser, error) {
	defer l.lock()()

	if l.mu != nil {
		// Fail early on the same conditions the commit would.
		info, err := l.inspect("open_write", p)
		if err != nil {
			return nil, err
		}
		if p.IsRoot() || (info != nil && info.IsDir()) {
			return nil, core.IsADirectory("open_write", p)
		}
		return &memWriter{l: l, p: p}, nil
	}

	const op = "open_write"
	if p.IsRoot() {
		return nil, core.IsADirectory(op, p)
	}
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return nil, err
	case info != nil && info.IsDir():
		return nil, core.IsADirectory(op, p)
	}
	if err := l.makeDirs(op, p.Dir()); err != nil {
		return nil, err
	}

	tmp := l.bfs.Join(bpath(p.Dir()), "."+p.Base()+"."+uuid.NewString()+".tmp")
	f, err := l.bfs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return nil, translate(err, op, p)
	}
	return &diskWriter{l: l, p: p, tmp: tmp, f: f}, nil
}

// diskWriter streams into a temporary file next to the target and renames it
// into place on Close.
type diskWriter struct {
	l      *Provider
	p      storepath.Path
	tmp    string
	f      billy.File
	closed bool
}

func (w *diskWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	n, err := w.f.Write(b)
	if err != nil {
		return n, translate(err, "write", w.p)
	}
	return n, nil
}

func (w *diskWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.f.Close(); err != nil {
		_ = w.l.bfs.Remove(w.tmp)
		return translate(err, "close", w.p)
	}
	if err := w.l.bfs.Rename(w.tmp, bpath(w.p)); err != nil {
		_ = w.l.bfs.Remove(w.tmp)
		return translate(err, "close", w.p)
	}
	return nil
}

// Abort implements core.Aborter.
func (w *diskWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.f.Close()
	if err := w.l.bfs.Remove(w.tmp); err != nil {
		return translate(err, "abort", w.p)
	}
	return nil
}

type memWriter struct {
	l      *Provider
	p      storepath.Path
	buf    bytes.Buffer
	closed bool
}

func (w *memWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(b)
}

func (w *memWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.l.lock()()
	return w.l.writeBytes(w.p, w.buf.Bytes(), true)
}

// Abort implements core.Aborter.
func (w *memWriter) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}

// Exists implements core.Exister.
func (l *Provider) Exists(p storepath.Path) (bool, error) {
	defer l.rlock()()
	info, err := l.inspect("exists", p)
	return info != nil, err
}

// IsDir implements core.DirChecker.
func (l *Provider) IsDir(p storepath.Path) (bool, error) {
	defer l.rlock()()
	info, err := l.inspect("is_dir", p)
	return info != nil && info.IsDir(), err
}

// IsFile implements core.FileChecker.
func (l *Provider) IsFile(p storepath.Path) (bool, error) {
	defer l.rlock()()
	info, err := l.inspect("is_file", p)
	return info != nil && !info.IsDir(), err
}

// Stat implements core.Stater.
func (l *Provider) Stat(p storepath.Path) (core.FileInfo, error) {
	defer l.rlock()()

	const op = "stat"
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return core.FileInfo{}, err
	case info == nil:
		return core.FileInfo{}, core.NotFound(op, p)
	}

	fi := core.FileInfo{Path: p, ModTime: info.ModTime(), Kind: core.KindFile, Size: info.Size()}
	if info.IsDir() {
		fi.Kind = core.KindDir
		fi.Size = 0
	}
	return fi, nil
}

// ListDir implements core.Lister.
func (l *Provider) ListDir(p storepath.Path) ([]string, error) {
	defer l.rlock()()
	return l.listDir("listdir", p)
}

func (l *Provider) listDir(op string, p storepath.Path) ([]string, error) {
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return nil, err
	case info == nil:
		return nil, core.NotFound(op, p)
	case !info.IsDir():
		return nil, core.NotADirectory(op, p)
	}

	entries, err := l.bfs.ReadDir(bpath(p))
	if err != nil {
		return nil, translate(err, op, p)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MakeDirs implements core.DirMaker.
func (l *Provider) MakeDirs(p storepath.Path) error {
	defer l.lock()()
	return l.makeDirs("makedirs", p)
}

func (l *Provider) makeDirs(op string, p storepath.Path) error {
	if p.IsRoot() {
		return nil
	}

	// MkdirAll reports a file in the way inconsistently across billy
	// implementations, so walk the prefixes first.
	cur := storepath.Root()
	for _, seg := range p.Segments() {
		next, err := cur.Join(seg)
		if err != nil {
			return err
		}
		info, err := l.inspect(op, next)
		if err != nil {
			return err
		}
		if info == nil {
			break
		}
		if !info.IsDir() {
			return core.NotADirectory(op, next)
		}
		cur = next
	}

	if err := l.bfs.MkdirAll(bpath(p), dirPerm); err != nil {
		return translate(err, op, p)
	}
	return nil
}

// Remove implements core.Remover.
func (l *Provider) Remove(p storepath.Path) error {
	defer l.lock()()

	const op = "remove"
	if p.IsRoot() {
		return core.IsADirectory(op, p)
	}
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return err
	case info == nil:
		return core.NotFound(op, p)
	case info.IsDir():
		return core.IsADirectory(op, p)
	}
	return translate(l.bfs.Remove(bpath(p)), op, p)
}

// Rmdir implements core.DirRemover.
func (l *Provider) Rmdir(p storepath.Path) error {
	defer l.lock()()

	const op = "rmdir"
	names, err := l.listDir(op, p)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return core.DirectoryNotEmpty(op, p)
	}
	if p.IsRoot() {
		return errors.WithContext(
			errors.New(errors.CodeInvalidPath, "rmdir /: refusing to remove the store root"), "op", op)
	}
	return translate(l.bfs.Remove(bpath(p)), op, p)
}

// Rmtree implements core.TreeRemover.
func (l *Provider) Rmtree(p storepath.Path) error {
	defer l.lock()()

	const op = "rmtree"
	if p.IsRoot() {
		return errors.WithContext(
			errors.New(errors.CodeInvalidPath, "rmtree /: refusing to remove the store root"), "op", op)
	}
	info, err := l.inspect(op, p)
	switch {
	case err != nil:
		return err
	case info == nil:
		return nil
	case !info.IsDir():
		return core.NotADirectory(op, p)
	}
	return translate(util.RemoveAll(l.bfs, bpath(p)), op, p)
}

// Rename implements core.Renamer. It is only declared by disk providers; the
// memfs rename also moves siblings sharing the source name as a prefix.
func (l *Provider) Rename(src, dst storepath.Path) error {
	defer l.lock()()

	const op = "rename"
	if src.String() == dst.String() {
		return nil
	}
	if src.IsRoot() || dst.Within(src) {
		return errors.WithContextMap(
			errors.Newf(errors.CodeInvalidPath, "rename %s to %s: destination is inside the source",
				bpath(src), bpath(dst)),
			map[string]interface{}{"op": op, "src": src.String(), "dst": dst.String()})
	}

	info, err := l.inspect(op, src)
	if err != nil {
		return err
	}
	if info == nil {
		return core.NotFound(op, src)
	}
	existing, err := l.inspect(op, dst)
	if err != nil {
		return err
	}
	if existing != nil {
		return core.AlreadyExists(op, dst)
	}

	if err := l.makeDirs(op, dst.Dir()); err != nil {
		return err
	}
	return translate(l.bfs.Rename(bpath(src), bpath(dst)), op, src)
}

var (
	_ core.Provider     = (*Provider)(nil)
	_ core.ByteReader   = (*Provider)(nil)
	_ core.ByteWriter   = (*Provider)(nil)
	_ core.StreamReader = (*Provider)(nil)
	_ core.StreamWriter = (*Provider)(nil)
	_ core.Exister      = (*Provider)(nil)
	_ core.DirChecker    = (*Provider)(nil)
	_ core.FileChecker   = (*Provider)(nil)
	_ core.Stater       = (*Provider)(nil)
	_ core.Lister       = (*Provider)(nil)
	_ core.DirMaker     = (*Provider)(nil)
	_ core.Remover      = (*Provider)(nil)
	_ core.DirRemover   = (*Provider)(nil)
	_ core.TreeRemover  = (*Provider)(nil)
	_ core.Renamer      = (*Provider)(nil)
)
