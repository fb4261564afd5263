package minio

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/fs/minio/internal/errs"
	"github.com/jmgilman/go/filestore/storepath"
)

const contentType = "application/octet-stream"

// objectWriter uploads an object on Close. Writes are buffered until the
// threshold is crossed, after which the buffer is flushed into a pipe feeding
// a background PutObject of unknown size.
type objectWriter struct {
	conn      *conn
	key       string
	path      storepath.Path
	threshold int64

	buffer *bytes.Buffer
	pipeW  *io.PipeWriter
	putRes chan error
	closed bool
}

func newObjectWriter(c *conn, key string, p storepath.Path, threshold int64) *objectWriter {
	return &objectWriter{
		conn:      c,
		key:       key,
		path:      p,
		threshold: threshold,
		buffer:    new(bytes.Buffer),
	}
}

// Write implements io.Writer.
// nolint:contextcheck // io.Writer.Write cannot accept a context
func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, core.Wrap(fs.ErrClosed, errors.CodeInvalidInput, "write", w.path)
	}
	if w.pipeW != nil {
		n, err := w.pipeW.Write(p)
		if err != nil {
			return n, errs.Translate(err, "write", w.path)
		}
		return n, nil
	}
	if int64(w.buffer.Len()+len(p)) <= w.threshold {
		return w.buffer.Write(p)
	}
	return w.stream(p)
}

// stream starts the background upload, flushes the buffer into it and
// writes p.
func (w *objectWriter) stream(p []byte) (int, error) {
	pr, pw := io.Pipe()
	w.pipeW = pw
	w.putRes = make(chan error, 1)

	go func() {
		_, err := w.conn.client.PutObject(context.Background(), w.conn.bucket, w.key, pr, -1,
			minio.PutObjectOptions{ContentType: contentType})
		_ = pr.CloseWithError(err)
		w.putRes <- err
		close(w.putRes)
	}()

	if w.buffer.Len() > 0 {
		if _, err := pw.Write(w.buffer.Bytes()); err != nil {
			return 0, errs.Translate(err, "write", w.path)
		}
	}
	w.buffer = nil

	n, err := pw.Write(p)
	if err != nil {
		return n, errs.Translate(err, "write", w.path)
	}
	return n, nil
}

// Close commits the object. Closing twice is a no-op.
func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.pipeW != nil {
		_ = w.pipeW.Close()
		return errs.Translate(<-w.putRes, "close", w.path)
	}

	_, err := w.conn.client.PutObject(context.Background(), w.conn.bucket, w.key,
		bytes.NewReader(w.buffer.Bytes()), int64(w.buffer.Len()),
		minio.PutObjectOptions{ContentType: contentType})
	return errs.Translate(err, "close", w.path)
}

var errAborted = stderrors.New("write aborted")

// Abort implements core.Aborter. A streaming upload is cancelled by failing
// its reader, which leaves no object behind.
func (w *objectWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.pipeW != nil {
		_ = w.pipeW.CloseWithError(errAborted)
		<-w.putRes
	}
	w.buffer = nil
	return nil
}
