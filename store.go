package filestore

import (
	"io"
	"log/slog"
	"strings"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/internal/logging"
	"github.com/jmgilman/go/filestore/storepath"
)

// Store is the storage-agnostic facade over a core.Provider.
// It is safe for concurrent use when the provider is.
type Store struct {
	provider core.Provider
	caps     core.CapabilitySet
	norm     storepath.Normalizer
	logger   *slog.Logger

	autoInstall bool
}

// Option configures a Store.
type Option func(*Store)

// WithNormalizer sets the normalizer applied to every raw path.
func WithNormalizer(n storepath.Normalizer) Option {
	return func(s *Store) {
		s.norm = n
	}
}

// WithShare sets the share token stripped from raw paths.
func WithShare(share string) Option {
	return func(s *Store) {
		s.norm = storepath.NewNormalizer(share)
	}
}

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAutoInstall records whether callers asked for missing format support to
// be installed on demand. Format packages read it through AutoInstall.
func WithAutoInstall(enabled bool) Option {
	return func(s *Store) {
		s.autoInstall = enabled
	}
}

// New returns a Store over provider. The capability set is read once.
func New(provider core.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		caps:     provider.Capabilities(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the bound provider.
func (s *Store) Provider() core.Provider {
	return s.provider
}

// Normalizer returns the normalizer applied to raw paths.
func (s *Store) Normalizer() storepath.Normalizer {
	return s.norm
}

// Logger returns the store's logger. Format packages log through it.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// AutoInstall reports the WithAutoInstall setting.
func (s *Store) AutoInstall() bool {
	return s.autoInstall
}

// Normalize resolves raw the way every Store method does. The literals "/"
// and "." name the store root.
func (s *Store) Normalize(raw string) (storepath.Path, error) {
	return s.resolve("normalize", raw)
}

func (s *Store) resolve(op, raw string) (storepath.Path, error) {
	switch strings.TrimSpace(raw) {
	case "/", ".", "./", `\`:
		return storepath.Root(), nil
	}
	p, err := s.norm.Normalize(raw)
	if err != nil {
		return storepath.Path{}, errors.WithContextMap(err, map[string]interface{}{
			"op":       op,
			"provider": s.provider.Name(),
		})
	}
	return p, nil
}

// fail attaches op, path and provider context to err, keeping its code.
func (s *Store) fail(err error, op string, p storepath.Path) error {
	if err == nil {
		return nil
	}
	return errors.WithContext(core.Wrap(err, errors.CodeInternal, op, p), "provider", s.provider.Name())
}

func (s *Store) unsupported(op string, p storepath.Path, c core.Capability) error {
	return core.Unsupported(op, p, c, s.provider.Name())
}

// rootGuard rejects destructive operations on the store root.
func (s *Store) rootGuard(op string, p storepath.Path) error {
	if !p.IsRoot() {
		return nil
	}
	return errors.WithContextMap(
		errors.Newf(errors.CodeInvalidPath, "%s /: refusing to operate on the store root", op),
		map[string]interface{}{"op": op, "path": "", "provider": s.provider.Name()},
	)
}

// missingImpl reports a provider that declares c without implementing it.
func (s *Store) missingImpl(op string, p storepath.Path, c core.Capability) error {
	return errors.WithContextMap(
		errors.Newf(errors.CodeInternal, "provider %q declares %q but does not implement it",
			s.provider.Name(), c.String()),
		map[string]interface{}{"op": op, "path": p.String(), "capability": c.String()},
	)
}

func (s *Store) usingFallback(op string, c core.Capability) {
	s.logger.Debug("using fallback",
		"op", op,
		"capability", c.String(),
		"provider", s.provider.Name())
}

// ReadBytes returns the content of the file at path.
func (s *Store) ReadBytes(path string) ([]byte, error) {
	const op = "read_bytes"
	p, err := s.resolve(op, path)
	if err != nil {
		return nil, err
	}
	data, err := s.readBytes(op, p)
	return data, s.fail(err, op, p)
}

// WriteBytes stores data at path, creating parent directories. With overwrite
// false an existing entry fails AlreadyExists.
func (s *Store) WriteBytes(path string, data []byte, overwrite bool) error {
	const op = "write_bytes"
	p, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	return s.fail(s.writeBytes(op, p, data, overwrite), op, p)
}

// OpenRead opens the file at path for streaming reads.
func (s *Store) OpenRead(path string) (io.ReadCloser, error) {
	const op = "open_read"
	p, err := s.resolve(op, path)
	if err != nil {
		return nil, err
	}
	r, err := s.openRead(op, p)
	return r, s.fail(err, op, p)
}

// OpenWrite creates or truncates the file at path for streaming writes. The
// content is committed when Close returns nil.
func (s *Store) OpenWrite(path string) (io.WriteCloser, error) {
	const op = "open_write"
	p, err := s.resolve(op, path)
	if err != nil {
		return nil, err
	}
	w, err := s.openWrite(op, p)
	return w, s.fail(err, op, p)
}

// Exists reports whether any entry exists at path.
func (s *Store) Exists(path string) (bool, error) {
	const op = "exists"
	p, err := s.resolve(op, path)
	if err != nil {
		return false, err
	}
	ok, err := s.exists(op, p)
	return ok, s.fail(err, op, p)
}

// IsDir reports whether path is a directory.
func (s *Store) IsDir(path string) (bool, error) {
	const op = "is_dir"
	p, err := s.resolve(op, path)
	if err != nil {
		return false, err
	}
	ok, err := s.isDir(op, p)
	return ok, s.fail(err, op, p)
}

// IsFile reports whether path is a regular file.
func (s *Store) IsFile(path string) (bool, error) {
	const op = "is_file"
	p, err := s.resolve(op, path)
	if err != nil {
		return false, err
	}
	ok, err := s.isFile(op, p)
	return ok, s.fail(err, op, p)
}

// Stat returns metadata for path.
func (s *Store) Stat(path string) (core.FileInfo, error) {
	const op = "stat"
	p, err := s.resolve(op, path)
	if err != nil {
		return core.FileInfo{}, err
	}
	fi, err := s.stat(op, p)
	return fi, s.fail(err, op, p)
}

// ListDir returns the sorted entry names of the directory at path.
func (s *Store) ListDir(path string) ([]string, error) {
	const op = "listdir"
	p, err := s.resolve(op, path)
	if err != nil {
		return nil, err
	}
	names, err := s.listDir(op, p)
	return names, s.fail(err, op, p)
}

// MakeDirs creates the directory at path and any missing parents. Existing
// directories are not an error.
func (s *Store) MakeDirs(path string) error {
	const op = "makedirs"
	p, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	return s.fail(s.makeDirs(op, p), op, p)
}

// Remove deletes the file at path.
func (s *Store) Remove(path string) error {
	const op = "remove"
	p, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	if err := s.rootGuard(op, p); err != nil {
		return err
	}
	return s.fail(s.remove(op, p), op, p)
}

// Rmdir deletes the empty directory at path.
func (s *Store) Rmdir(path string) error {
	const op = "rmdir"
	p, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	if err := s.rootGuard(op, p); err != nil {
		return err
	}
	return s.fail(s.rmdir(op, p), op, p)
}

// Rmtree deletes the directory at path and everything below it. An absent path
// is not an error; a file fails NotADirectory.
func (s *Store) Rmtree(path string) error {
	const op = "rmtree"
	p, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	if err := s.rootGuard(op, p); err != nil {
		return err
	}
	return s.fail(s.rmtree(op, p), op, p)
}

// Rename moves src to dst. Providers without a native rename get a copy then
// delete that is not atomic; a failure part way through returns
// errors.CodePartialRename.
func (s *Store) Rename(src, dst string) error {
	const op = "rename"
	sp, err := s.resolve(op, src)
	if err != nil {
		return err
	}
	dp, err := s.resolve(op, dst)
	if err != nil {
		return err
	}
	if err := s.rootGuard(op, sp); err != nil {
		return err
	}
	if err := s.rootGuard(op, dp); err != nil {
		return err
	}
	if err := s.rename(op, sp, dp); err != nil {
		return errors.WithContextMap(s.fail(err, op, sp), map[string]interface{}{
			"src": sp.String(),
			"dst": dp.String(),
		})
	}
	return nil
}
