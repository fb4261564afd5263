package filestore_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/fs/fstest"
	"github.com/jmgilman/go/filestore/fs/local"
	"github.com/jmgilman/go/filestore/storepath"
)

// restrictions each leave a capability set from which the Store can still
// provide every operation.
var restrictions = map[string][]core.Capability{
	"NoBytes":   {core.CapReadBytes, core.CapWriteBytes},
	"NoStreams": {core.CapOpenRead, core.CapOpenWrite},
	"NoQueries": {core.CapExists, core.CapIsDir, core.CapIsFile},
	"NoStat":    {core.CapStat, core.CapExists},
	"NoTreeOps": {core.CapRmtree, core.CapRename},
}

func TestConformance_Fallbacks(t *testing.T) {
	for name, drop := range restrictions {
		t.Run(name+"/Memory", func(t *testing.T) {
			fstest.TestSuite(t, func(t *testing.T) *filestore.Store {
				return filestore.New(fstest.Restrict(local.NewMemory(), drop...))
			})
		})
		t.Run(name+"/Disk", func(t *testing.T) {
			fstest.TestSuite(t, func(t *testing.T) *filestore.Store {
				p, err := local.New(t.TempDir())
				require.NoError(t, err)
				return filestore.New(fstest.Restrict(p, drop...))
			})
		})
	}
}

func TestStore_Unsupported(t *testing.T) {
	s := filestore.New(fstest.RestrictTo(local.NewMemory(), core.CapReadBytes, core.CapWriteBytes))

	require.NoError(t, s.WriteBytes("a.txt", []byte("a"), true))

	_, err := s.ListDir("/")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupported, errors.GetCode(err))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "listdir", pe.Context()["capability"])
	assert.Equal(t, "local-restricted", pe.Context()["provider"])

	assert.True(t, errors.HasCode(s.Rename("a.txt", "b.txt"), errors.CodeUnsupported))
	assert.True(t, errors.HasCode(s.Rmtree("dir"), errors.CodeUnsupported))
	_, err = s.Exists("a.txt")
	assert.True(t, errors.HasCode(err, errors.CodeUnsupported))

	err = s.WriteBytes("a.txt", []byte("again"), false)
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyExists))
}

func TestStore_CapabilityReport(t *testing.T) {
	s := filestore.New(fstest.RestrictTo(local.NewMemory(),
		core.CapReadBytes, core.CapWriteBytes, core.CapStat, core.CapListDir))

	got := make(map[string]string)
	for _, st := range s.CapabilityReport() {
		got[st.Capability.String()] = st.Support.String()
	}
	assert.Equal(t, map[string]string{
		"read_bytes":  "native",
		"write_bytes": "native",
		"open_read":   "fallback",
		"open_write":  "fallback",
		"exists":      "fallback",
		"is_dir":      "fallback",
		"is_file":     "fallback",
		"stat":        "native",
		"listdir":     "native",
		"makedirs":    "absent",
		"remove":      "absent",
		"rmdir":       "absent",
		"rmtree":      "absent",
		"rename":      "absent",
	}, got)

	assert.True(t, s.Supports(core.CapOpenRead))
	assert.False(t, s.Supports(core.CapRename))
	assert.False(t, s.Capabilities().Has(core.CapOpenRead))
}

func TestStore_DebugPrintCapabilities(t *testing.T) {
	s := filestore.New(local.NewMemory())

	var buf bytes.Buffer
	require.NoError(t, s.DebugPrintCapabilities(&buf))

	out := buf.String()
	assert.Contains(t, out, "local (memory)")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "rename") {
			assert.Contains(t, line, "fallback")
		}
		if strings.Contains(line, "read_bytes") && !strings.Contains(line, "declared") {
			assert.Contains(t, line, "native")
		}
	}
}

func TestStore_StreamFallbacks(t *testing.T) {
	s := filestore.New(fstest.Restrict(local.NewMemory(), core.CapOpenRead, core.CapOpenWrite))

	w, err := s.OpenWrite("buffered.txt")
	require.NoError(t, err)
	_, err = io.WriteString(w, "nothing yet")
	require.NoError(t, err)

	ok, err := s.Exists("buffered.txt")
	require.NoError(t, err)
	assert.False(t, ok, "buffered writes are stored on Close")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second Close is a no-op")

	r, err := s.OpenRead("buffered.txt")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "nothing yet", string(data))
}

// failing wraps a provider and fails selected operations.
type failing struct {
	*fstest.Restricted
	failRemove bool
	writeLimit int
	writes     int
}

func (f *failing) Remove(p storepath.Path) error {
	if f.failRemove {
		return errors.New(errors.CodePermission, "remove denied")
	}
	return f.Restricted.Remove(p)
}

func (f *failing) Rmtree(p storepath.Path) error {
	if f.failRemove {
		return errors.New(errors.CodePermission, "rmtree denied")
	}
	return f.Restricted.Rmtree(p)
}

func (f *failing) WriteBytes(p storepath.Path, data []byte, overwrite bool) error {
	f.writes++
	if f.writeLimit > 0 && f.writes > f.writeLimit {
		return errors.New(errors.CodeUnavailable, "disk full")
	}
	return f.Restricted.WriteBytes(p, data, overwrite)
}

func TestStore_RenamePartialDelete(t *testing.T) {
	mem := local.NewMemory()
	f := &failing{Restricted: fstest.Restrict(mem)}
	s := filestore.New(f)

	require.NoError(t, s.WriteBytes("src.txt", []byte("payload"), true))
	f.failRemove = true

	err := s.Rename("src.txt", "dst.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodePartialRename, errors.GetCode(err))
	assert.True(t, errors.HasCode(err, errors.CodePermission))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "delete", pe.Context()["stage"])
	assert.Equal(t, "src.txt", pe.Context()["src"])
	assert.Equal(t, "dst.txt", pe.Context()["dst"])

	// Both copies are left in place.
	data, err := s.ReadBytes("dst.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	ok, err := s.Exists("src.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_RenamePartialCopy(t *testing.T) {
	f := &failing{Restricted: fstest.Restrict(local.NewMemory())}
	s := filestore.New(f)

	require.NoError(t, s.WriteBytes("dir/a.txt", []byte("a"), true))
	require.NoError(t, s.WriteBytes("dir/b.txt", []byte("b"), true))
	f.writes, f.writeLimit = 0, 1

	err := s.Rename("dir", "moved")
	require.Error(t, err)
	assert.Equal(t, errors.CodePartialRename, errors.GetCode(err))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "copy", pe.Context()["stage"])
	assert.Equal(t, 1, pe.Context()["copied"])

	ok, err := s.Exists("dir/b.txt")
	require.NoError(t, err)
	assert.True(t, ok, "the source is untouched when copying fails")
}

func TestStore_RenameFirstCopyFails(t *testing.T) {
	f := &failing{Restricted: fstest.Restrict(local.NewMemory())}
	s := filestore.New(f)

	require.NoError(t, s.WriteBytes("one.txt", []byte("1"), true))
	f.writes, f.writeLimit = 1, 1

	err := s.Rename("one.txt", "two.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
}

func TestStore_RenameDirFirstCopyFails(t *testing.T) {
	f := &failing{Restricted: fstest.Restrict(local.NewMemory())}
	s := filestore.New(f)

	require.NoError(t, s.WriteBytes("dir/sub/a.txt", []byte("a"), true))
	f.writes, f.writeLimit = 1, 1

	err := s.Rename("dir", "moved")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))

	ok, err := s.Exists("moved")
	require.NoError(t, err)
	assert.False(t, ok, "directories created before the failed copy are removed")

	f.writeLimit = 0
	require.NoError(t, s.Rename("dir", "moved"))
	data, err := s.ReadBytes("moved/sub/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
}

// declaresOnly claims a capability it does not implement.
type declaresOnly struct{}

func (declaresOnly) Name() string { return "liar" }

func (declaresOnly) Type() core.FSType { return core.FSTypeUnknown }

func (declaresOnly) Capabilities() core.CapabilitySet {
	return core.NewCapabilitySet(core.CapListDir)
}

func TestStore_DeclaredButNotImplemented(t *testing.T) {
	s := filestore.New(declaresOnly{})
	_, err := s.ListDir("/")
	assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
}
