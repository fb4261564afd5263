package core_test

import (
	"testing"

	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapability_String(t *testing.T) {
	tests := []struct {
		c    core.Capability
		want string
	}{
		{core.CapReadBytes, "read_bytes"},
		{core.CapWriteBytes, "write_bytes"},
		{core.CapOpenRead, "open_read"},
		{core.CapOpenWrite, "open_write"},
		{core.CapExists, "exists"},
		{core.CapIsDir, "is_dir"},
		{core.CapIsFile, "is_file"},
		{core.CapStat, "stat"},
		{core.CapListDir, "listdir"},
		{core.CapMakeDirs, "makedirs"},
		{core.CapRemove, "remove"},
		{core.CapRmdir, "rmdir"},
		{core.CapRmtree, "rmtree"},
		{core.CapRename, "rename"},
		{core.Capability(0), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.String())
			if tt.c != 0 {
				got, ok := core.ParseCapability(tt.want)
				require.True(t, ok)
				assert.Equal(t, tt.c, got)
			}
		})
	}

	_, ok := core.ParseCapability("chmod")
	assert.False(t, ok)
	got, ok := core.ParseCapability(" Rename ")
	assert.True(t, ok)
	assert.Equal(t, core.CapRename, got)
}

func TestCapabilitySet(t *testing.T) {
	s := core.NewCapabilitySet(core.CapReadBytes, core.CapListDir)

	assert.True(t, s.Has(core.CapReadBytes))
	assert.True(t, s.Has(core.CapListDir))
	assert.False(t, s.Has(core.CapRename))
	assert.False(t, s.Has(core.Capability(0)))
	assert.Equal(t, []core.Capability{core.CapReadBytes, core.CapListDir}, s.List())
	assert.Equal(t, "read_bytes,listdir", s.String())

	s = s.With(core.CapRename).Without(core.CapReadBytes)
	assert.Equal(t, "listdir,rename", s.String())

	assert.Len(t, core.AllCapabilities().List(), 14)
	assert.Empty(t, core.AllCapabilities().Missing())
	assert.Equal(t, core.Capabilities(), core.AllCapabilities().List())
	assert.Len(t, s.Missing(), 12)
	assert.Equal(t, "none", core.CapabilitySet(0).String())
}

type readOnly struct{}

func (readOnly) ReadBytes(storepath.Path) ([]byte, error) { return nil, nil }
func (readOnly) Exists(storepath.Path) (bool, error)      { return false, nil }

func TestImplemented(t *testing.T) {
	got := core.Implemented(readOnly{})
	assert.Equal(t, core.NewCapabilitySet(core.CapReadBytes, core.CapExists), got)
	assert.Equal(t, core.CapabilitySet(0), core.Implemented(struct{}{}))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "file", core.KindFile.String())
	assert.Equal(t, "dir", core.KindDir.String())
	assert.True(t, core.FileInfo{Kind: core.KindDir}.IsDir())
	assert.False(t, core.FileInfo{}.IsDir())
}
