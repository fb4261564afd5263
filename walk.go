package filestore

import (
	stderrors "errors"
	"io/fs"
	"slices"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// SkipDir may be returned by a WalkFunc to skip the subdirectories of the
// directory it was called for.
var SkipDir = fs.SkipDir

// WalkFunc is called once per directory with the sorted names of its
// subdirectories and files.
type WalkFunc func(dir storepath.Path, dirs, files []string) error

// Copy copies the file at src to dst, replacing dst if it exists.
func (s *Store) Copy(src, dst string) error {
	const op = "copy"
	sp, err := s.resolve(op, src)
	if err != nil {
		return err
	}
	dp, err := s.resolve(op, dst)
	if err != nil {
		return err
	}
	if sp.String() == dp.String() {
		return nil
	}
	if s.canInspect() {
		k, err := s.inspect(op, sp)
		if err != nil {
			return s.fail(err, op, sp)
		}
		switch {
		case !k.exists:
			return s.fail(core.NotFound(op, sp), op, sp)
		case k.dir:
			return s.fail(core.IsADirectory(op, sp), op, sp)
		}
	}
	return s.fail(s.copyFile(op, sp, dp, true), op, dp)
}

// Walk visits the tree rooted at top, parents before children, calling fn for
// each directory. Returning SkipDir from fn skips that directory's
// subdirectories; any other error stops the walk and is returned.
func (s *Store) Walk(top string, fn WalkFunc) error {
	const op = "walk"
	p, err := s.resolve(op, top)
	if err != nil {
		return err
	}
	return s.fail(s.walk(op, p, fn), op, p)
}

func (s *Store) walk(op string, dir storepath.Path, fn WalkFunc) error {
	names, err := s.listDir(op, dir)
	if err != nil {
		return err
	}

	var dirs, files []string
	for _, name := range names {
		child, err := dir.Join(name)
		if err != nil {
			return err
		}
		k, err := s.inspect(op, child)
		if err != nil {
			return err
		}
		if k.dir {
			dirs = append(dirs, name)
		} else if k.exists {
			files = append(files, name)
		}
	}

	if err := fn(dir, dirs, files); err != nil {
		if stderrors.Is(err, SkipDir) {
			return nil
		}
		return err
	}

	for _, name := range dirs {
		child, _ := dir.Join(name)
		if err := s.walk(op, child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Glob returns the sorted paths matching pattern. Matching uses gobwas/glob
// with "/" as separator: "*", "?", "[...]" and "{a,b}" stay within a segment
// and "**" spans directories. A "**" segment also matches zero directories,
// so "a/**" includes "a" itself. The store root never matches.
func (s *Store) Glob(pattern string) ([]string, error) {
	const op = "glob"
	p, err := s.resolve(op, pattern)
	if err != nil {
		return nil, err
	}

	segs := p.Segments()
	base := storepath.Root()
	rest := segs
	for len(rest) > 0 && !hasMeta(rest[0]) {
		if base, err = base.Join(rest[0]); err != nil {
			return nil, err
		}
		rest = rest[1:]
	}

	found := make(map[string]struct{})
	if len(rest) == 0 {
		k, err := s.inspect(op, base)
		if err != nil {
			return nil, s.fail(err, op, base)
		}
		if k.exists && !base.IsRoot() {
			found[base.String()] = struct{}{}
		}
		return sortedKeys(found), nil
	}

	matchers, err := compileGlob(segs)
	if err != nil {
		return nil, errors.WithContextMap(err, map[string]interface{}{"op": op, "pattern": p.String()})
	}
	match := func(c storepath.Path) {
		if c.IsRoot() {
			return
		}
		for _, g := range matchers {
			if g.Match(c.String()) {
				found[c.String()] = struct{}{}
				return
			}
		}
	}

	depth := len(rest)
	if slices.Contains(rest, "**") {
		depth = -1
	}
	match(base)
	if err := s.descend(op, base, depth, match); err != nil {
		return nil, s.fail(err, op, base)
	}
	return sortedKeys(found), nil
}

// compileGlob compiles the pattern segments, adding one variant per
// combination of "**" segments left out.
func compileGlob(segs []string) ([]glob.Glob, error) {
	variants := [][]string{nil}
	for _, seg := range segs {
		next := make([][]string, 0, len(variants)*2)
		for _, v := range variants {
			next = append(next, append(slices.Clip(v), seg))
			if seg == "**" {
				next = append(next, v)
			}
		}
		variants = next
	}

	seen := make(map[string]struct{}, len(variants))
	out := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		pat := strings.Join(v, "/")
		if _, dup := seen[pat]; dup || pat == "" {
			continue
		}
		seen[pat] = struct{}{}
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidPath, "invalid glob pattern")
		}
		out = append(out, g)
	}
	return out, nil
}

// descend calls visit for every entry below dir, at most depth levels deep
// when depth is not negative. Missing directories and files yield nothing.
func (s *Store) descend(op string, dir storepath.Path, depth int, visit func(storepath.Path)) error {
	if depth == 0 {
		return nil
	}
	names, err := s.listDir(op, dir)
	if errors.HasCode(err, errors.CodeNotFound) || errors.HasCode(err, errors.CodeNotADirectory) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, name := range names {
		child, err := dir.Join(name)
		if err != nil {
			return err
		}
		visit(child)
		if depth == 1 {
			continue
		}
		k, err := s.inspect(op, child)
		if err != nil {
			return err
		}
		if k.dir {
			if err := s.descend(op, child, depth-1, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func hasMeta(seg string) bool {
	return strings.ContainsAny(seg, "*?[{")
}
