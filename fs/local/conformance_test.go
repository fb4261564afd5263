package local_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/fs/fstest"
	"github.com/jmgilman/go/filestore/fs/local"
)

func TestConformance_Disk(t *testing.T) {
	fstest.TestSuite(t, func(t *testing.T) *filestore.Store {
		p, err := local.New(t.TempDir())
		require.NoError(t, err)
		return filestore.New(p)
	})
}

func TestConformance_Memory(t *testing.T) {
	fstest.TestSuite(t, func(t *testing.T) *filestore.Store {
		return filestore.New(local.NewMemory())
	})
}
