// Package fstest provides a conformance suite for filestore providers.
//
// The suite drives a provider through a filestore.Store, so it checks what
// callers observe: native operations and the Store's fallbacks alike. Every
// backend package runs it from its tests:
//
//	func TestConformance(t *testing.T) {
//	    fstest.TestSuite(t, func(t *testing.T) *filestore.Store {
//	        return filestore.New(myprovider.New(t.TempDir()))
//	    })
//	}
//
// Restrict hides capabilities from a provider so the same suite can verify
// that the fallbacks behave like the native operations they replace.
package fstest

import (
	"testing"

	"github.com/jmgilman/go/filestore"
)

// Config adapts the suite to backend characteristics.
type Config struct {
	// NoModTime indicates Stat cannot report modification times.
	NoModTime bool

	// SkipTests lists group or "Group/Subtest" names to skip.
	SkipTests []string
}

// DefaultConfig returns the configuration for backends with full POSIX-like
// semantics.
func DefaultConfig() Config {
	return Config{}
}

// NewStore returns a fresh, empty Store for one test.
type NewStore func(t *testing.T) *filestore.Store

// TestSuite runs every conformance group with DefaultConfig.
func TestSuite(t *testing.T, newStore NewStore) {
	TestSuiteWithConfig(t, newStore, DefaultConfig())
}

// TestSuiteWithConfig runs every conformance group. Each group gets its own
// Store from newStore.
func TestSuiteWithConfig(t *testing.T, newStore NewStore, config Config) {
	groups := []struct {
		name string
		run  func(*testing.T, *filestore.Store, Config)
	}{
		{"ReadWrite", TestReadWrite},
		{"Streams", TestStreams},
		{"Queries", TestQueries},
		{"ListDir", TestListDir},
		{"MakeDirs", TestMakeDirs},
		{"Removal", TestRemoval},
		{"Rename", TestRename},
		{"Scenario", TestScenario},
		{"Walk", TestWalk},
		{"Concurrent", TestConcurrent},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(g.name) {
				t.Skip("Skipped by provider configuration")
			}
			g.run(t, newStore(t), config)
		})
	}
}

func (c Config) skip(name string) bool {
	for _, s := range c.SkipTests {
		if s == name {
			return true
		}
	}
	return false
}

// run executes a subtest unless it is skipped.
func run(t *testing.T, config Config, group, name string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if config.skip(group + "/" + name) {
			t.Skip("Skipped by provider configuration")
		}
		fn(t)
	})
}
