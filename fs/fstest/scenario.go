package fstest

import (
	"bytes"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/storepath"
)

// TestScenario runs a create, move and delete sequence end to end.
func TestScenario(t *testing.T, s *filestore.Store, config Config) {
	run(t, config, "Scenario", "Lifecycle", func(t *testing.T) {
		data := []byte{0x00, 0x01, 0x02}

		mustMakeDirs(t, s, "a/b/c")
		expectList(t, s, "a/b", "c")

		if err := s.WriteBytes("a/b/c/f.bin", data, false); err != nil {
			t.Fatalf("WriteBytes(a/b/c/f.bin): got error %v, want nil", err)
		}
		expectContent(t, s, "a/b/c/f.bin", data)

		if err := s.Rename("a/b/c/f.bin", "a/b/c/g.bin"); err != nil {
			t.Fatalf("Rename(f.bin, g.bin): got error %v, want nil", err)
		}
		expectList(t, s, "a/b/c", "g.bin")
		expectContent(t, s, "a/b/c/g.bin", data)

		if err := s.Rmtree("a"); err != nil {
			t.Fatalf("Rmtree(a): got error %v, want nil", err)
		}
		expectExists(t, s, "a", false)
	})
}

// TestWalk checks Walk, Glob and Copy.
func TestWalk(t *testing.T, s *filestore.Store, config Config) {
	const group = "Walk"
	for _, p := range []string{
		"w/top.txt",
		"w/x/one.csv",
		"w/x/two.txt",
		"w/x/y/three.csv",
		"w/z/four.csv",
	} {
		mustWrite(t, s, p, []byte(p))
	}

	run(t, config, group, "TopDown", func(t *testing.T) {
		var visited []string
		err := s.Walk("w", func(dir storepath.Path, dirs, files []string) error {
			visited = append(visited, fmt.Sprintf("%s %v %v", dir.String(), dirs, files))
			return nil
		})
		if err != nil {
			t.Fatalf("Walk(w): got error %v, want nil", err)
		}
		want := []string{
			"w [x z] [top.txt]",
			"w/x [y] [one.csv two.txt]",
			"w/x/y [] [three.csv]",
			"w/z [] [four.csv]",
		}
		if fmt.Sprint(visited) != fmt.Sprint(want) {
			t.Errorf("Walk(w) visited %q, want %q", visited, want)
		}
	})

	run(t, config, group, "SkipDir", func(t *testing.T) {
		var visited []string
		err := s.Walk("w", func(dir storepath.Path, dirs, files []string) error {
			visited = append(visited, dir.String())
			if dir.Base() == "x" {
				return filestore.SkipDir
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk(w): got error %v, want nil", err)
		}
		if fmt.Sprint(visited) != "[w w/x w/z]" {
			t.Errorf("Walk(w) with SkipDir visited %v, want [w w/x w/z]", visited)
		}
	})

	run(t, config, group, "Glob", func(t *testing.T) {
		tests := []struct {
			pattern string
			want    []string
		}{
			{"w/*.txt", []string{"w/top.txt"}},
			{"w/*/*.csv", []string{"w/x/one.csv", "w/z/four.csv"}},
			{"w/**/*.csv", []string{"w/x/one.csv", "w/x/y/three.csv", "w/z/four.csv"}},
			{"w/x/t?o.txt", []string{"w/x/two.txt"}},
			{"w/none/*", nil},
		}
		for _, tt := range tests {
			got, err := s.Glob(tt.pattern)
			if err != nil {
				t.Errorf("Glob(%s): got error %v, want nil", tt.pattern, err)
				continue
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Glob(%s) = %v, want %v", tt.pattern, got, tt.want)
			}
		}
	})

	run(t, config, group, "Copy", func(t *testing.T) {
		if err := s.Copy("w/top.txt", "w/copy/top.txt"); err != nil {
			t.Fatalf("Copy: got error %v, want nil", err)
		}
		expectContent(t, s, "w/copy/top.txt", []byte("w/top.txt"))
		expectContent(t, s, "w/top.txt", []byte("w/top.txt"))
	})
}

// TestConcurrent writes and reads distinct files from many goroutines.
func TestConcurrent(t *testing.T, s *filestore.Store, config Config) {
	run(t, config, "Concurrent", "ReadWrite", func(t *testing.T) {
		const n = 16
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				p := fmt.Sprintf("conc/%02d/file.txt", i)
				want := bytes.Repeat([]byte{byte('a' + i)}, 64)
				if err := s.WriteBytes(p, want, true); err != nil {
					return err
				}
				got, err := s.ReadBytes(p)
				if err != nil {
					return err
				}
				if !bytes.Equal(got, want) {
					return fmt.Errorf("%s: read %q, want %q", p, got, want)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("concurrent read/write: %v", err)
		}

		names, err := s.ListDir("conc")
		if err != nil {
			t.Fatalf("ListDir(conc): got error %v, want nil", err)
		}
		if len(names) != n {
			t.Errorf("ListDir(conc) returned %d entries, want %d", len(names), n)
		}
	})
}
