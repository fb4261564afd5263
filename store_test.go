package filestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/local"
	"github.com/jmgilman/go/filestore/storepath"
)

func newMemoryStore(t *testing.T, opts ...filestore.Option) *filestore.Store {
	t.Helper()
	return filestore.New(local.NewMemory(), opts...)
}

func TestStore_Normalize(t *testing.T) {
	s := newMemoryStore(t, filestore.WithShare("ABC"))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"root slash", "/", ""},
		{"root dot", ".", ""},
		{"root backslash", `\`, ""},
		{"plain", "dir/file.txt", "dir/file.txt"},
		{"unc share", `\\fileserver\ABC\dir\file.txt`, "dir/file.txt"},
		{"file uri", "file://fileserver/ABC/dir/file%20name.txt", "dir/file name.txt"},
		{"drive letter", `C:\data\x.txt`, "data/x.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}

	_, err := s.Normalize("../escape")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidPath))
	assert.Equal(t, "ABC", s.Normalizer().Share)
}

func TestStore_SharePathsReachSameFile(t *testing.T) {
	s := newMemoryStore(t, filestore.WithShare("ABC"))
	require.NoError(t, s.WriteBytes(`\\server\ABC\reports\q1.txt`, []byte("q1"), false))

	data, err := s.ReadBytes("reports/q1.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("q1"), data)

	data, err = s.ReadBytes("file:///ABC/reports/q1.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("q1"), data)
}

func TestStore_ErrorContext(t *testing.T) {
	s := newMemoryStore(t)

	_, err := s.ReadBytes("missing/file.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "missing/file.txt", pe.Context()["path"])
	assert.Equal(t, local.Name, pe.Context()["provider"])
	assert.NotEmpty(t, pe.Context()["op"])
}

func TestStore_InvalidPathsNeverReachProvider(t *testing.T) {
	s := newMemoryStore(t)

	for _, raw := range []string{"", "   ", "a/../../b", "bad\x00name"} {
		err := s.WriteBytes(raw, []byte("x"), true)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidPath), "WriteBytes(%q): %v", raw, err)
	}
	names, err := s.ListDir("/")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_RootGuards(t *testing.T) {
	s := newMemoryStore(t)
	require.NoError(t, s.WriteBytes("keep.txt", []byte("k"), true))

	for name, err := range map[string]error{
		"remove": s.Remove("/"),
		"rmdir":  s.Rmdir("."),
		"rmtree": s.Rmtree(`\`),
		"rename": s.Rename("/", "elsewhere"),
	} {
		assert.True(t, errors.HasCode(err, errors.CodeInvalidPath), "%s: %v", name, err)
	}

	ok, err := s.Exists("keep.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Accessors(t *testing.T) {
	p := local.NewMemory()
	s := filestore.New(p, filestore.WithNormalizer(storepath.NewNormalizer("Share")))

	assert.Same(t, p, s.Provider())
	assert.Equal(t, "Share", s.Normalizer().Share)
	assert.Equal(t, p.Capabilities(), s.Capabilities())
}
