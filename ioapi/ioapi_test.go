package ioapi_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/config"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/local"
	"github.com/jmgilman/go/filestore/ioapi"
)

func newStore(t *testing.T, opts ...filestore.Option) *filestore.Store {
	t.Helper()
	return filestore.New(local.NewMemory(), opts...)
}

// useDefault installs a local resolver rooted in a temp dir as the
// process-wide default.
func useDefault(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.Default()
	cfg.UsePlugin = config.PolicyLocal
	cfg.LocalRoot = t.TempDir()
	cfg.NonInteractive = true
	if mutate != nil {
		mutate(&cfg)
	}

	filestore.SetDefault(filestore.NewResolver(filestore.WithConfig(cfg)))
	t.Cleanup(filestore.ResetDefault)
	return cfg.LocalRoot
}

func TestBytes(t *testing.T) {
	s := newStore(t)

	require.NoError(t, ioapi.WriteBytes(s, "a/b.bin", []byte{1, 2, 3}))
	require.NoError(t, ioapi.WriteBytes(s, "a/b.bin", []byte{4}), "writers overwrite")

	got, err := ioapi.ReadBytes(s, "a/b.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, got)

	_, err = ioapi.ReadBytes(s, "missing.bin")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestStreams(t *testing.T) {
	s := newStore(t)

	w, err := ioapi.OpenWrite(s, "stream.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := ioapi.OpenRead(s, "stream.txt")
	require.NoError(t, err)
	defer func() {
		_ = r.Close()
	}()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(data))
}

func TestNilStoreUsesActiveStore(t *testing.T) {
	root := useDefault(t, nil)

	require.NoError(t, ioapi.WriteText(nil, `reports\q1.txt`, "hello"))

	data, err := os.ReadFile(filepath.Join(root, "reports", "q1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	text, err := ioapi.ReadText(nil, "reports/q1.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
