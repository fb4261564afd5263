package errs

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/storepath"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, IsNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.True(t, IsNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, IsNotFound(nil))
}

func TestTranslate(t *testing.T) {
	p := storepath.MustNormalize("a/b.txt")

	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, errors.CodeNotFound},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, errors.CodePermission},
		{"forbidden status", minio.ErrorResponse{Code: "Custom", StatusCode: http.StatusForbidden}, errors.CodePermission},
		{"parent is object", minio.ErrorResponse{Code: "XMinioParentIsObject"}, errors.CodeNotADirectory},
		{"slow down", minio.ErrorResponse{Code: "SlowDown"}, errors.CodeUnavailable},
		{"unavailable", minio.ErrorResponse{Code: "X", StatusCode: http.StatusServiceUnavailable}, errors.CodeUnavailable},
		{"deadline", fmt.Errorf("put: %w", context.DeadlineExceeded), errors.CodeTimeout},
		{"transport", fmt.Errorf("dial tcp: connection refused"), errors.CodeNetwork},
		{"other s3 error", minio.ErrorResponse{Code: "InternalError", StatusCode: 500}, errors.CodeInternal},
		{"already coded", errors.New(errors.CodeAlreadyExists, "exists"), errors.CodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(tt.err, "read", p)
			assert.Equal(t, tt.want, errors.GetCode(err))
		})
	}

	assert.NoError(t, Translate(nil, "read", p))
}

func TestTranslate_Context(t *testing.T) {
	p := storepath.MustNormalize("a/b.txt")
	err := Translate(minio.ErrorResponse{Code: "AccessDenied"}, "write", p)

	var perr errors.PlatformError
	if assert.True(t, errors.As(err, &perr)) {
		assert.Equal(t, "write", perr.Context()["op"])
		assert.Equal(t, "a/b.txt", perr.Context()["path"])
	}
}

func TestTranslate_Classification(t *testing.T) {
	p := storepath.MustNormalize("a/b.txt")

	assert.True(t, errors.IsRetryable(Translate(minio.ErrorResponse{Code: "InternalError", StatusCode: 500}, "read", p)))
	assert.True(t, errors.IsRetryable(Translate(minio.ErrorResponse{Code: "SlowDown"}, "read", p)))
	assert.False(t, errors.IsRetryable(Translate(minio.ErrorResponse{Code: "InvalidArgument", StatusCode: 400}, "read", p)))
	assert.False(t, errors.IsRetryable(Translate(minio.ErrorResponse{Code: "AccessDenied"}, "read", p)))
}
