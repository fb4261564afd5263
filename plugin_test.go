package filestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/fs/local"
)

func memoryPlugin(filestore.PluginContext) (filestore.Plugin, error) {
	return filestore.Plugin{Store: local.NewMemory(local.WithName("memory-plugin"))}, nil
}

func TestRegistry(t *testing.T) {
	reg := filestore.NewRegistry()
	assert.Empty(t, reg.Names())

	reg.Register("zeta", memoryPlugin)
	reg.Register("alpha", memoryPlugin)
	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())

	_, ok := reg.Lookup("alpha")
	assert.True(t, ok)
	_, ok = reg.Lookup("beta")
	assert.False(t, ok)

	assert.Panics(t, func() { reg.Register("alpha", memoryPlugin) }, "duplicate name")
	assert.Panics(t, func() { reg.Register("nil", nil) }, "nil factory")

	reg.Unregister("alpha")
	assert.Equal(t, []string{"zeta"}, reg.Names())
}

func TestDefaultRegistry(t *testing.T) {
	const name = "default-registry-test"
	filestore.Register(name, memoryPlugin)
	t.Cleanup(func() { filestore.Unregister(name) })

	assert.Contains(t, filestore.Plugins(), name)
	_, ok := filestore.DefaultRegistry().Lookup(name)
	assert.True(t, ok)
}
