// Package errs maps MinIO errors onto filestore error codes.
package errs

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// IsNotFound reports whether err is a missing object or bucket.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}

// Translate converts a MinIO error for op on p into a filestore error.
// Errors that already carry a filestore code are returned unchanged.
func Translate(err error, op string, p storepath.Path) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != errors.CodeUnknown {
		return err
	}
	if IsNotFound(err) {
		return core.NotFound(op, p)
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return core.Wrap(err, errors.CodePermission, op, p)
	case resp.Code == "XMinioParentIsObject":
		return core.NotADirectory(op, p)
	case resp.StatusCode == http.StatusServiceUnavailable || resp.Code == "SlowDown":
		return core.Wrap(err, errors.CodeUnavailable, op, p)
	case stderrors.Is(err, context.DeadlineExceeded):
		return core.Wrap(err, errors.CodeTimeout, op, p)
	case resp.Code == "":
		// No S3 error document: the request never got an answer.
		return core.Wrap(err, errors.CodeNetwork, op, p)
	case resp.StatusCode >= http.StatusInternalServerError:
		return errors.WithClassification(core.Wrap(err, errors.CodeInternal, op, p), errors.ClassificationRetryable)
	}
	return core.Wrap(err, errors.CodeInternal, op, p)
}
