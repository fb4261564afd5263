package core_test

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathErrors(t *testing.T) {
	p := storepath.MustNormalize("a/b.txt")

	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
		msg  string
	}{
		{"NotFound", core.NotFound("remove", p), errors.CodeNotFound, "remove a/b.txt: no such file or directory"},
		{"AlreadyExists", core.AlreadyExists("write_bytes", p), errors.CodeAlreadyExists, "write_bytes a/b.txt: already exists"},
		{"IsADirectory", core.IsADirectory("remove", p), errors.CodeIsADirectory, "remove a/b.txt: is a directory"},
		{"NotADirectory", core.NotADirectory("listdir", p), errors.CodeNotADirectory, "listdir a/b.txt: not a directory"},
		{"DirectoryNotEmpty", core.DirectoryNotEmpty("rmdir", p), errors.CodeDirectoryNotEmpty, "rmdir a/b.txt: directory not empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pe errors.PlatformError
			require.True(t, errors.As(tt.err, &pe))
			assert.Equal(t, tt.code, pe.Code())
			assert.Equal(t, tt.msg, pe.Message())
			assert.Equal(t, "a/b.txt", pe.Context()["path"])
		})
	}

	assert.ErrorIs(t, core.NotFound("stat", p), fs.ErrNotExist)
	assert.ErrorIs(t, core.AlreadyExists("rename", p), fs.ErrExist)
}

func TestUnsupported(t *testing.T) {
	p := storepath.MustNormalize("x")
	err := core.Unsupported("stat", p, core.CapStat, "minio")

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, errors.CodeUnsupported, pe.Code())
	assert.Equal(t, `stat x: capability "stat" not supported by provider "minio"`, pe.Message())
	assert.Equal(t, "stat", pe.Context()["capability"])
	assert.Equal(t, "minio", pe.Context()["provider"])
	assert.ErrorIs(t, err, stderrors.ErrUnsupported)
}

func TestWrap(t *testing.T) {
	p := storepath.MustNormalize("x")

	assert.NoError(t, core.Wrap(nil, errors.CodeInternal, "stat", p))

	err := core.Wrap(stderrors.New("disk on fire"), errors.CodeInternal, "stat", p)
	assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
	assert.Contains(t, err.Error(), "disk on fire")

	err = core.Wrap(core.NotFound("stat", p), errors.CodeInternal, "read_bytes", p)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
