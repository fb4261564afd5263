package fstest

import (
	"testing"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// TestListDir checks directory listings.
func TestListDir(t *testing.T, s *filestore.Store, config Config) {
	const group = "ListDir"

	run(t, config, group, "Sorted", func(t *testing.T) {
		mustWrite(t, s, "ls/zeta.txt", nil)
		mustWrite(t, s, "ls/alpha.txt", nil)
		mustWrite(t, s, "ls/mid/inner.txt", nil)
		mustMakeDirs(t, s, "ls/beta")
		expectList(t, s, "ls", "alpha.txt", "beta", "mid", "zeta.txt")
	})

	run(t, config, group, "Root", func(t *testing.T) {
		names, err := s.ListDir("/")
		if err != nil {
			t.Fatalf("ListDir(/): got error %v, want nil", err)
		}
		found := false
		for _, n := range names {
			found = found || n == "ls"
		}
		if !found {
			t.Errorf("ListDir(/) = %v, want it to contain ls", names)
		}
	})

	run(t, config, group, "Empty", func(t *testing.T) {
		mustMakeDirs(t, s, "ls/empty")
		expectList(t, s, "ls/empty")
	})

	run(t, config, group, "Errors", func(t *testing.T) {
		_, err := s.ListDir("ls/zeta.txt")
		expectCode(t, err, errors.CodeNotADirectory, "ListDir(file)")

		_, err = s.ListDir("ls/none")
		expectCode(t, err, errors.CodeNotFound, "ListDir(missing)")
	})
}

// TestMakeDirs checks directory creation.
func TestMakeDirs(t *testing.T, s *filestore.Store, config Config) {
	const group = "MakeDirs"

	run(t, config, group, "Nested", func(t *testing.T) {
		mustMakeDirs(t, s, "mk/a/b/c")
		for _, p := range []string{"mk", "mk/a", "mk/a/b", "mk/a/b/c"} {
			if ok, err := s.IsDir(p); err != nil || !ok {
				t.Errorf("IsDir(%s) = %v, %v; want true, nil", p, ok, err)
			}
		}
	})

	run(t, config, group, "Idempotent", func(t *testing.T) {
		mustMakeDirs(t, s, "mk/again")
		if err := s.MakeDirs("mk/again"); err != nil {
			t.Errorf("MakeDirs(existing): got error %v, want nil", err)
		}
		if err := s.MakeDirs("/"); err != nil {
			t.Errorf("MakeDirs(/): got error %v, want nil", err)
		}
	})

	run(t, config, group, "FileInTheWay", func(t *testing.T) {
		mustWrite(t, s, "mk/file", []byte("f"))
		expectCode(t, s.MakeDirs("mk/file"), errors.CodeNotADirectory, "MakeDirs(file)")
		expectCode(t, s.MakeDirs("mk/file/below"), errors.CodeNotADirectory, "MakeDirs(below file)")
	})
}

// TestRemoval checks remove, rmdir and rmtree.
func TestRemoval(t *testing.T, s *filestore.Store, config Config) {
	const group = "Removal"

	run(t, config, group, "Remove", func(t *testing.T) {
		mustWrite(t, s, "rm/file.txt", []byte("x"))
		if err := s.Remove("rm/file.txt"); err != nil {
			t.Fatalf("Remove(rm/file.txt): got error %v, want nil", err)
		}
		expectExists(t, s, "rm/file.txt", false)

		expectCode(t, s.Remove("rm/file.txt"), errors.CodeNotFound, "Remove(missing)")
		mustMakeDirs(t, s, "rm/dir")
		expectCode(t, s.Remove("rm/dir"), errors.CodeIsADirectory, "Remove(directory)")
	})

	run(t, config, group, "Rmdir", func(t *testing.T) {
		mustMakeDirs(t, s, "rmd/empty")
		mustWrite(t, s, "rmd/full/x.txt", []byte("x"))

		expectCode(t, s.Rmdir("rmd/full"), errors.CodeDirectoryNotEmpty, "Rmdir(non-empty)")
		expectCode(t, s.Rmdir("rmd/full/x.txt"), errors.CodeNotADirectory, "Rmdir(file)")
		expectCode(t, s.Rmdir("rmd/none"), errors.CodeNotFound, "Rmdir(missing)")

		if err := s.Rmdir("rmd/empty"); err != nil {
			t.Fatalf("Rmdir(rmd/empty): got error %v, want nil", err)
		}
		expectExists(t, s, "rmd/empty", false)
		expectExists(t, s, "rmd", true)
	})

	run(t, config, group, "Rmtree", func(t *testing.T) {
		mustWrite(t, s, "rmt/a/b/c.txt", []byte("c"))
		mustWrite(t, s, "rmt/a/d.txt", []byte("d"))
		mustMakeDirs(t, s, "rmt/a/empty")
		mustWrite(t, s, "rmt/keep.txt", []byte("k"))

		if err := s.Rmtree("rmt/a"); err != nil {
			t.Fatalf("Rmtree(rmt/a): got error %v, want nil", err)
		}
		expectExists(t, s, "rmt/a", false)
		expectExists(t, s, "rmt/keep.txt", true)

		if err := s.Rmtree("rmt/a"); err != nil {
			t.Errorf("Rmtree(absent): got error %v, want nil", err)
		}
		expectCode(t, s.Rmtree("rmt/keep.txt"), errors.CodeNotADirectory, "Rmtree(file)")
	})

	run(t, config, group, "Root", func(t *testing.T) {
		expectCode(t, s.Rmtree("/"), errors.CodeInvalidPath, "Rmtree(/)")
		expectCode(t, s.Rmdir("/"), errors.CodeInvalidPath, "Rmdir(/)")
		expectCode(t, s.Remove("/"), errors.CodeInvalidPath, "Remove(/)")
	})
}
