// Package storepath defines the canonical, store-relative path used by every
// filestore backend and the Normalizer that produces it.
//
// A Path is never an operating system path. It is a forward-slash separated
// sequence of segments relative to the root of whichever store is bound, with no
// empty, "." or ".." segments. The zero value is the store root.
//
// Raw strings arrive in many shapes (backslashes, percent-encoding, file:// URIs
// pasted from a desktop, UNC shares, drive letters). Normalizer.Normalize reconciles
// them into one Path; there is no other way to build a Path from a string, so a
// backend can rely on never seeing unnormalized input.
package storepath

import (
	"strings"

	"github.com/jmgilman/go/filestore/errors"
)

// Path is a normalized store-relative path. Construct it with a Normalizer,
// Root, or Path.Join.
type Path struct {
	p string
}

// Root returns the store root.
func Root() Path {
	return Path{}
}

// String returns the slash-separated form. The root is the empty string.
func (p Path) String() string {
	return p.p
}

// IsRoot reports whether p is the store root.
func (p Path) IsRoot() bool {
	return p.p == ""
}

// Segments returns the path segments. The root has none.
func (p Path) Segments() []string {
	if p.p == "" {
		return nil
	}
	return strings.Split(p.p, "/")
}

// Base returns the last segment, or "" for the root.
func (p Path) Base() string {
	if i := strings.LastIndexByte(p.p, '/'); i >= 0 {
		return p.p[i+1:]
	}
	return p.p
}

// Dir returns the parent path. The parent of the root is the root.
func (p Path) Dir() Path {
	if i := strings.LastIndexByte(p.p, '/'); i >= 0 {
		return Path{p: p.p[:i]}
	}
	return Path{}
}

// Join appends a single entry name, as returned by a directory listing.
// Names containing separators, NUL, "." or ".." are rejected with CodeInvalidPath.
func (p Path) Join(name string) (Path, error) {
	if err := validName(name); err != nil {
		return Path{}, errors.WithContextMap(err, map[string]interface{}{
			"path": p.p,
			"name": name,
		})
	}
	if p.p == "" {
		return Path{p: name}, nil
	}
	return Path{p: p.p + "/" + name}, nil
}

// Within reports whether p equals base or lies below it.
func (p Path) Within(base Path) bool {
	if base.p == "" {
		return true
	}
	return p.p == base.p || strings.HasPrefix(p.p, base.p+"/")
}

// Rebase moves p from under oldBase to the same relative position under newBase.
// It returns false when p is not within oldBase.
func (p Path) Rebase(oldBase, newBase Path) (Path, bool) {
	if !p.Within(oldBase) {
		return Path{}, false
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(p.p, oldBase.p), "/")
	switch {
	case rel == "":
		return newBase, true
	case newBase.p == "":
		return Path{p: rel}, true
	default:
		return Path{p: newBase.p + "/" + rel}, true
	}
}

func validName(name string) error {
	switch {
	case name == "":
		return errors.New(errors.CodeInvalidPath, "empty path segment")
	case name == "." || name == "..":
		return errors.Newf(errors.CodeInvalidPath, "path segment %q is not a name", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return errors.Newf(errors.CodeInvalidPath, "path segment %q contains a separator or NUL", name)
	}
	return nil
}
