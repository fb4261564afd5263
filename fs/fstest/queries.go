package fstest

import (
	"testing"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
)

// TestQueries checks exists, is_dir, is_file and stat.
func TestQueries(t *testing.T, s *filestore.Store, config Config) {
	const group = "Queries"
	mustWrite(t, s, "query/file.txt", []byte("12345"))
	mustMakeDirs(t, s, "query/dir")

	run(t, config, group, "Kinds", func(t *testing.T) {
		tests := []struct {
			path                  string
			exists, isDir, isFile bool
		}{
			{"query", true, true, false},
			{"query/dir", true, true, false},
			{"query/file.txt", true, false, true},
			{"query/missing", false, false, false},
			{"query/file.txt/below", false, false, false},
		}
		for _, tt := range tests {
			expectExists(t, s, tt.path, tt.exists)
			if got, err := s.IsDir(tt.path); err != nil || got != tt.isDir {
				t.Errorf("IsDir(%s) = %v, %v; want %v, nil", tt.path, got, err, tt.isDir)
			}
			if got, err := s.IsFile(tt.path); err != nil || got != tt.isFile {
				t.Errorf("IsFile(%s) = %v, %v; want %v, nil", tt.path, got, err, tt.isFile)
			}
		}
	})

	run(t, config, group, "Root", func(t *testing.T) {
		if got, err := s.IsDir("/"); err != nil || !got {
			t.Errorf("IsDir(/) = %v, %v; want true, nil", got, err)
		}
	})

	run(t, config, group, "Stat", func(t *testing.T) {
		if !s.Supports(core.CapStat) {
			t.Skip("stat not supported")
		}
		fi, err := s.Stat("query/file.txt")
		if err != nil {
			t.Fatalf("Stat(query/file.txt): got error %v, want nil", err)
		}
		if fi.Size != 5 || fi.Kind != core.KindFile {
			t.Errorf("Stat(query/file.txt) = size %d kind %s, want size 5 kind file", fi.Size, fi.Kind)
		}
		if fi.Path.String() != "query/file.txt" {
			t.Errorf("Stat(query/file.txt).Path = %q", fi.Path.String())
		}
		if !config.NoModTime && fi.ModTime.IsZero() {
			t.Errorf("Stat(query/file.txt).ModTime is zero")
		}

		fi, err = s.Stat("query/dir")
		if err != nil {
			t.Fatalf("Stat(query/dir): got error %v, want nil", err)
		}
		if !fi.IsDir() || fi.Size != 0 {
			t.Errorf("Stat(query/dir) = size %d kind %s, want size 0 kind dir", fi.Size, fi.Kind)
		}

		_, err = s.Stat("query/missing")
		expectCode(t, err, errors.CodeNotFound, "Stat(missing)")
	})
}
