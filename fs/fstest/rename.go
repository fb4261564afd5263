package fstest

import (
	"testing"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// TestRename checks rename of files and directories.
func TestRename(t *testing.T, s *filestore.Store, config Config) {
	const group = "Rename"

	run(t, config, group, "File", func(t *testing.T) {
		mustWrite(t, s, "mv/src.txt", []byte("moved"))
		if err := s.Rename("mv/src.txt", "mv/dst.txt"); err != nil {
			t.Fatalf("Rename(file): got error %v, want nil", err)
		}
		expectExists(t, s, "mv/src.txt", false)
		expectContent(t, s, "mv/dst.txt", []byte("moved"))
	})

	run(t, config, group, "Directory", func(t *testing.T) {
		mustWrite(t, s, "mvd/src/a.txt", []byte("a"))
		mustWrite(t, s, "mvd/src/sub/b.txt", []byte("b"))
		mustMakeDirs(t, s, "mvd/src/empty")

		if err := s.Rename("mvd/src", "mvd/dst"); err != nil {
			t.Fatalf("Rename(directory): got error %v, want nil", err)
		}
		expectExists(t, s, "mvd/src", false)
		expectContent(t, s, "mvd/dst/a.txt", []byte("a"))
		expectContent(t, s, "mvd/dst/sub/b.txt", []byte("b"))
		expectList(t, s, "mvd/dst", "a.txt", "empty", "sub")
	})

	run(t, config, group, "CreatesParents", func(t *testing.T) {
		mustWrite(t, s, "mvp/file.txt", []byte("p"))
		if err := s.Rename("mvp/file.txt", "mvp/new/parent/file.txt"); err != nil {
			t.Fatalf("Rename(new parents): got error %v, want nil", err)
		}
		expectContent(t, s, "mvp/new/parent/file.txt", []byte("p"))
	})

	run(t, config, group, "SamePath", func(t *testing.T) {
		mustWrite(t, s, "mvs/same.txt", []byte("same"))
		if err := s.Rename("mvs/same.txt", `mvs\same.txt`); err != nil {
			t.Fatalf("Rename(same path): got error %v, want nil", err)
		}
		expectContent(t, s, "mvs/same.txt", []byte("same"))
	})

	run(t, config, group, "Errors", func(t *testing.T) {
		mustWrite(t, s, "mve/a.txt", []byte("a"))
		mustWrite(t, s, "mve/b.txt", []byte("b"))
		mustMakeDirs(t, s, "mve/dir")

		expectCode(t, s.Rename("mve/none", "mve/c.txt"), errors.CodeNotFound, "Rename(missing src)")
		expectCode(t, s.Rename("mve/a.txt", "mve/b.txt"), errors.CodeAlreadyExists, "Rename(existing dst)")
		expectCode(t, s.Rename("mve/dir", "mve/dir/inner"), errors.CodeInvalidPath, "Rename(into itself)")
		expectCode(t, s.Rename("/", "mve/root"), errors.CodeInvalidPath, "Rename(root)")

		expectContent(t, s, "mve/a.txt", []byte("a"))
		expectContent(t, s, "mve/b.txt", []byte("b"))
	})
}
