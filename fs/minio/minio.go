// Package minio provides a MinIO/S3-compatible filestore provider.
//
// The provider reads its connection parameters from a secrets.Provider the
// first time an operation needs them: host (endpoint), share (bucket), user,
// password and an optional root used as key prefix. Directories are key
// prefixes with a zero-byte marker object ("dir/") so empty directories exist
// and behave like local ones.
//
// Register installs the provider as the filestore plugin:
//
//	func main() {
//	    minio.Register()
//	    store, err := filestore.ActiveStore()
//	    ...
//	}
package minio

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/fs/minio/internal/errs"
	"github.com/jmgilman/go/filestore/fs/minio/internal/pathutil"
	"github.com/jmgilman/go/filestore/internal/logging"
	"github.com/jmgilman/go/filestore/secrets"
	"github.com/jmgilman/go/filestore/storepath"
)

// Name is the provider name.
const Name = "minio"

const (
	defaultMultipartThreshold = 5 * 1024 * 1024
	defaultRenameConcurrency  = 10
)

// Options configures a Provider.
type Options struct {
	// Secrets supplies the connection parameters. Required.
	Secrets secrets.Provider

	// Secure enables HTTPS connections.
	Secure bool

	// Client is an optional pre-configured client. The bucket and prefix still
	// come from Secrets.
	Client *minio.Client

	// MultipartThreshold is the buffered size after which writes stream to
	// the server. Default: 5MB.
	MultipartThreshold int64

	// RenameConcurrency limits concurrent copies during a directory rename.
	// Default: 10.
	RenameConcurrency int

	// Logger receives connection diagnostics.
	Logger *slog.Logger
}

// conn is an established connection to a bucket.
type conn struct {
	client *minio.Client
	bucket string
	prefix string
}

func (c *conn) key(p storepath.Path) string {
	return pathutil.Key(c.prefix, p)
}

func (c *conn) dirKey(p storepath.Path) string {
	return pathutil.DirKey(c.prefix, p)
}

// Provider is a core.Provider backed by a MinIO bucket.
type Provider struct {
	secrets            secrets.Provider
	secure             bool
	client             *minio.Client
	multipartThreshold int64
	renameConcurrency  int
	logger             *slog.Logger

	mu   sync.Mutex
	conn *conn
}

// New returns a provider that connects on first use.
func New(opts Options) (*Provider, error) {
	if opts.Secrets == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "minio: a secrets provider is required")
	}

	p := &Provider{
		secrets:            opts.Secrets,
		secure:             opts.Secure,
		client:             opts.Client,
		multipartThreshold: opts.MultipartThreshold,
		renameConcurrency:  opts.RenameConcurrency,
		logger:             opts.Logger,
	}
	if p.multipartThreshold <= 0 {
		p.multipartThreshold = defaultMultipartThreshold
	}
	if p.renameConcurrency <= 0 {
		p.renameConcurrency = defaultRenameConcurrency
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p, nil
}

// Name implements core.Provider.
func (m *Provider) Name() string { return Name }

// Type implements core.Provider.
func (m *Provider) Type() core.FSType { return core.FSTypeRemote }

// Capabilities implements core.Provider. Every operation is supported.
func (m *Provider) Capabilities() core.CapabilitySet { return core.AllCapabilities() }

// connect establishes the connection once. Failures are returned to the
// caller and retried on the next call.
func (m *Provider) connect(ctx context.Context) (*conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return m.conn, nil
	}

	s, err := settingsFrom(m.secrets, m.secure, m.client)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client, err = minio.New(s.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
			Secure: s.Secure,
		})
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to create minio client",
				map[string]interface{}{"endpoint": s.Endpoint})
		}
	}

	ok, err := client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return nil, errors.WithContext(errs.Translate(err, "connect", storepath.Root()), "bucket", s.Bucket)
	}
	if !ok {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "minio bucket %q does not exist", s.Bucket), "bucket", s.Bucket)
	}

	m.logger.Debug("connected to minio",
		"endpoint", client.EndpointURL().Host,
		"bucket", s.Bucket,
		"prefix", s.Prefix)
	m.conn = &conn{client: client, bucket: s.Bucket, prefix: s.Prefix}
	return m.conn, nil
}

// entry describes what is stored at a path.
type entry struct {
	info   minio.ObjectInfo
	exists bool
	dir    bool
}

// lookup finds p as a file, then as a directory marker or non-empty prefix.
func (m *Provider) lookup(ctx context.Context, c *conn, op string, p storepath.Path) (entry, error) {
	if p.IsRoot() {
		return entry{exists: true, dir: true}, nil
	}

	info, err := c.client.StatObject(ctx, c.bucket, c.key(p), minio.StatObjectOptions{})
	if err == nil {
		return entry{info: info, exists: true}, nil
	}
	if !errs.IsNotFound(err) {
		return entry{}, errs.Translate(err, op, p)
	}

	dir, err := m.hasPrefix(ctx, c, c.dirKey(p))
	if err != nil {
		return entry{}, errs.Translate(err, op, p)
	}
	return entry{exists: dir, dir: dir}, nil
}

// hasPrefix reports whether any object key starts with prefix.
func (m *Provider) hasPrefix(ctx context.Context, c *conn, prefix string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   1,
	}) {
		if object.Err != nil {
			return false, object.Err
		}
		return true, nil
	}
	return false, nil
}

// begin connects and returns the context for one operation.
func (m *Provider) begin() (context.Context, *conn, error) {
	ctx := context.Background()
	c, err := m.connect(ctx)
	return ctx, c, err
}

// openObject checks that p is a file and opens it.
func (m *Provider) openObject(op string, p storepath.Path) (*minio.Object, minio.ObjectInfo, error) {
	ctx, c, err := m.begin()
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}

	e, err := m.lookup(ctx, c, op, p)
	switch {
	case err != nil:
		return nil, minio.ObjectInfo{}, err
	case !e.exists:
		return nil, minio.ObjectInfo{}, core.NotFound(op, p)
	case e.dir:
		return nil, minio.ObjectInfo{}, core.IsADirectory(op, p)
	}

	obj, err := c.client.GetObject(ctx, c.bucket, c.key(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, errs.Translate(err, op, p)
	}
	return obj, e.info, nil
}

// ReadBytes implements core.ByteReader.
func (m *Provider) ReadBytes(p storepath.Path) ([]byte, error) {
	const op = "read"
	obj, info, err := m.openObject(op, p)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = obj.Close()
	}()

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, errs.Translate(err, op, p)
	}
	return buf, nil
}

// OpenRead implements core.StreamReader. The object is streamed, not buffered.
func (m *Provider) OpenRead(p storepath.Path) (io.ReadCloser, error) {
	obj, _, err := m.openObject("open_read", p)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// prepareWrite checks that p can hold a file and creates its parents.
func (m *Provider) prepareWrite(ctx context.Context, c *conn, op string, p storepath.Path, overwrite bool) error {
	if p.IsRoot() {
		return core.IsADirectory(op, p)
	}
	e, err := m.lookup(ctx, c, op, p)
	switch {
	case err != nil:
		return err
	case e.dir:
		return core.IsADirectory(op, p)
	case e.exists && !overwrite:
		return core.AlreadyExists(op, p)
	}
	return m.makeDirs(ctx, c, op, p.Dir())
}

// WriteBytes implements core.ByteWriter.
func (m *Provider) WriteBytes(p storepath.Path, data []byte, overwrite bool) error {
	const op = "write"
	ctx, c, err := m.begin()
	if err != nil {
		return err
	}
	if err := m.prepareWrite(ctx, c, op, p, overwrite); err != nil {
		return err
	}

	_, err = c.client.PutObject(ctx, c.bucket, c.key(p), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return errs.Translate(err, op, p)
}

// OpenWrite implements core.StreamWriter. Data is buffered up to the multipart
// threshold and streamed beyond it; the object appears when Close returns.
func (m *Provider) OpenWrite(p storepath.Path) (io.WriteCloser, error) {
	const op = "open_write"
	ctx, c, err := m.begin()
	if err != nil {
		return nil, err
	}
	if err := m.prepareWrite(ctx, c, op, p, true); err != nil {
		return nil, err
	}
	return newObjectWriter(c, c.key(p), p, m.multipartThreshold), nil
}

// Exists implements core.Exister.
func (m *Provider) Exists(p storepath.Path) (bool, error) {
	ctx, c, err := m.begin()
	if err != nil {
		return false, err
	}
	e, err := m.lookup(ctx, c, "exists", p)
	return e.exists, err
}

// IsDir implements core.DirChecker.
func (m *Provider) IsDir(p storepath.Path) (bool, error) {
	ctx, c, err := m.begin()
	if err != nil {
		return false, err
	}
	e, err := m.lookup(ctx, c, "is_dir", p)
	return e.dir, err
}

// IsFile implements core.FileChecker.
func (m *Provider) IsFile(p storepath.Path) (bool, error) {
	ctx, c, err := m.begin()
	if err != nil {
		return false, err
	}
	e, err := m.lookup(ctx, c, "is_file", p)
	return e.exists && !e.dir, err
}

// Stat implements core.Stater. Directories report the marker's modification
// time when there is one.
func (m *Provider) Stat(p storepath.Path) (core.FileInfo, error) {
	const op = "stat"
	ctx, c, err := m.begin()
	if err != nil {
		return core.FileInfo{}, err
	}
	e, err := m.lookup(ctx, c, op, p)
	switch {
	case err != nil:
		return core.FileInfo{}, err
	case !e.exists:
		return core.FileInfo{}, core.NotFound(op, p)
	case e.dir:
		fi := core.FileInfo{Path: p, Kind: core.KindDir}
		if marker, err := c.client.StatObject(ctx, c.bucket, c.dirKey(p), minio.StatObjectOptions{}); err == nil {
			fi.ModTime = marker.LastModified
		}
		return fi, nil
	}
	return core.FileInfo{
		Path:    p,
		Size:    e.info.Size,
		ModTime: e.info.LastModified,
		Kind:    core.KindFile,
	}, nil
}

// ListDir implements core.Lister.
func (m *Provider) ListDir(p storepath.Path) ([]string, error) {
	const op = "listdir"
	ctx, c, err := m.begin()
	if err != nil {
		return nil, err
	}

	prefix := c.dirKey(p)
	seen := make(map[string]struct{})
	marker := false
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, errs.Translate(object.Err, op, p)
		}
		if object.Key == prefix {
			marker = true
			continue
		}
		if name, _, ok := pathutil.Child(prefix, object.Key); ok {
			seen[name] = struct{}{}
		}
	}

	if len(seen) == 0 && !marker && !p.IsRoot() {
		e, err := m.lookup(ctx, c, op, p)
		switch {
		case err != nil:
			return nil, err
		case !e.exists:
			return nil, core.NotFound(op, p)
		case !e.dir:
			return nil, core.NotADirectory(op, p)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MakeDirs implements core.DirMaker by writing a marker for p and each parent.
func (m *Provider) MakeDirs(p storepath.Path) error {
	ctx, c, err := m.begin()
	if err != nil {
		return err
	}
	return m.makeDirs(ctx, c, "makedirs", p)
}

func (m *Provider) makeDirs(ctx context.Context, c *conn, op string, p storepath.Path) error {
	cur := storepath.Root()
	for _, seg := range p.Segments() {
		next, err := cur.Join(seg)
		if err != nil {
			return err
		}
		cur = next

		_, err = c.client.StatObject(ctx, c.bucket, c.key(cur), minio.StatObjectOptions{})
		if err == nil {
			return core.NotADirectory(op, cur)
		}
		if !errs.IsNotFound(err) {
			return errs.Translate(err, op, cur)
		}

		_, err = c.client.StatObject(ctx, c.bucket, c.dirKey(cur), minio.StatObjectOptions{})
		if err == nil {
			continue
		}
		if !errs.IsNotFound(err) {
			return errs.Translate(err, op, cur)
		}
		if err := putMarker(ctx, c, c.dirKey(cur)); err != nil {
			return errs.Translate(err, op, cur)
		}
	}
	return nil
}

func putMarker(ctx context.Context, c *conn, key string) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(nil), 0,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Remove implements core.Remover.
func (m *Provider) Remove(p storepath.Path) error {
	const op = "remove"
	ctx, c, err := m.begin()
	if err != nil {
		return err
	}
	e, err := m.lookup(ctx, c, op, p)
	switch {
	case err != nil:
		return err
	case !e.exists:
		return core.NotFound(op, p)
	case e.dir:
		return core.IsADirectory(op, p)
	}
	return errs.Translate(c.client.RemoveObject(ctx, c.bucket, c.key(p), minio.RemoveObjectOptions{}), op, p)
}

// Rmdir implements core.DirRemover. Only the marker may remain below p.
func (m *Provider) Rmdir(p storepath.Path) error {
	const op = "rmdir"
	if p.IsRoot() {
		return errors.WithContext(
			errors.New(errors.CodeInvalidPath, "rmdir /: refusing to remove the store root"), "op", op)
	}
	ctx, c, err := m.begin()
	if err != nil {
		return err
	}

	names, err := m.ListDir(p)
	if err != nil {
		return core.Wrap(err, errors.CodeInternal, op, p)
	}
	if len(names) > 0 {
		return core.DirectoryNotEmpty(op, p)
	}
	return errs.Translate(c.client.RemoveObject(ctx, c.bucket, c.dirKey(p), minio.RemoveObjectOptions{}), op, p)
}

// Rmtree implements core.TreeRemover using the batch delete API.
func (m *Provider) Rmtree(p storepath.Path) error {
	const op = "rmtree"
	if p.IsRoot() {
		return errors.WithContext(
			errors.New(errors.CodeInvalidPath, "rmtree /: refusing to remove the store root"), "op", op)
	}
	ctx, c, err := m.begin()
	if err != nil {
		return err
	}
	e, err := m.lookup(ctx, c, op, p)
	switch {
	case err != nil:
		return err
	case !e.exists:
		return nil
	case !e.dir:
		return core.NotADirectory(op, p)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectsCh := make(chan minio.ObjectInfo, 100)
	var listErr error
	go func() {
		defer close(objectsCh)
		for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
			Prefix:    c.dirKey(p),
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	return m.drainRemovals(op, p, c.client.RemoveObjects(ctx, c.bucket, objectsCh, minio.RemoveObjectsOptions{}),
		func() error { return listErr })
}

// drainRemovals consumes a RemoveObjects result channel and reports the first
// failure. listErr is consulted after the channel closes.
func (m *Provider) drainRemovals(op string, p storepath.Path, results <-chan minio.RemoveObjectError,
	listErr func() error) error {
	var first error
	for r := range results {
		if r.Err != nil && first == nil {
			first = r.Err
		}
	}
	if err := listErr(); err != nil {
		return errs.Translate(err, op, p)
	}
	return errs.Translate(first, op, p)
}

// Rename implements core.Renamer with server-side copies followed by a batch
// delete. It is not atomic: a failure after the first copy is reported as
// errors.CodePartialRename.
func (m *Provider) Rename(src, dst storepath.Path) error {
	const op = "rename"
	if src.String() == dst.String() {
		return nil
	}
	if src.IsRoot() || dst.Within(src) {
		return errors.WithContextMap(
			errors.Newf(errors.CodeInvalidPath, "rename %s to %s: destination is inside the source",
				src.String(), dst.String()),
			map[string]interface{}{"op": op, "src": src.String(), "dst": dst.String()})
	}

	ctx, c, err := m.begin()
	if err != nil {
		return err
	}
	from, err := m.lookup(ctx, c, op, src)
	switch {
	case err != nil:
		return err
	case !from.exists:
		return core.NotFound(op, src)
	}
	to, err := m.lookup(ctx, c, op, dst)
	switch {
	case err != nil:
		return err
	case to.exists:
		return core.AlreadyExists(op, dst)
	}
	if err := m.makeDirs(ctx, c, op, dst.Dir()); err != nil {
		return err
	}

	if !from.dir {
		if err := copyObject(ctx, c, c.key(src), c.key(dst)); err != nil {
			return errs.Translate(err, op, src)
		}
		err := c.client.RemoveObject(ctx, c.bucket, c.key(src), minio.RemoveObjectOptions{})
		if err != nil {
			return partialRename(errs.Translate(err, op, src), "delete", src, dst, 1)
		}
		return nil
	}

	copied, err := m.parallelCopy(ctx, c, c.dirKey(src), c.dirKey(dst))
	if err != nil {
		if len(copied) == 0 {
			return errs.Translate(err, op, src)
		}
		return partialRename(errs.Translate(err, op, src), "copy", src, dst, len(copied))
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	for _, key := range copied {
		toDelete <- minio.ObjectInfo{Key: key}
	}
	close(toDelete)

	results := c.client.RemoveObjects(ctx, c.bucket, toDelete, minio.RemoveObjectsOptions{})
	if err := m.drainRemovals(op, src, results, func() error { return nil }); err != nil {
		return partialRename(err, "delete", src, dst, len(copied))
	}
	return nil
}

// copyObject copies one key server-side. Directory markers are recreated
// rather than copied.
func copyObject(ctx context.Context, c *conn, from, to string) error {
	if strings.HasSuffix(from, "/") {
		return putMarker(ctx, c, to)
	}
	_, err := c.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: to},
		minio.CopySrcOptions{Bucket: c.bucket, Object: from})
	return err
}

// parallelCopy copies every key below oldPrefix to newPrefix using a bounded
// worker pool. It returns the source keys that were copied.
func (m *Provider) parallelCopy(ctx context.Context, c *conn, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.renameConcurrency)

	var copiedMu sync.Mutex
	var copied []string

	for object := range c.client.ListObjects(egCtx, c.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			_ = eg.Wait()
			return copied, object.Err
		}

		key := object.Key
		eg.Go(func() error {
			if err := copyObject(egCtx, c, key, newPrefix+strings.TrimPrefix(key, oldPrefix)); err != nil {
				return err
			}
			copiedMu.Lock()
			copied = append(copied, key)
			copiedMu.Unlock()
			return nil
		})
	}

	err := eg.Wait()
	return copied, err
}

func partialRename(cause error, stage string, src, dst storepath.Path, copied int) error {
	return errors.WrapWithContext(cause, errors.CodePartialRename,
		"rename "+src.String()+" to "+dst.String()+": partially completed during "+stage,
		map[string]interface{}{
			"src":    src.String(),
			"dst":    dst.String(),
			"stage":  stage,
			"copied": copied,
		})
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
