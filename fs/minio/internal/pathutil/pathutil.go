// Package pathutil maps store paths onto MinIO/S3 object keys.
//
// A file at store path "a/b.txt" under prefix "root" is the object
// "root/a/b.txt". A directory is the key prefix "root/a/" and may have a
// zero-byte marker object with exactly that key.
package pathutil

import (
	"path"
	"strings"

	"github.com/jmgilman/go/filestore/storepath"
)

// NormalizePrefix cleans a configured key prefix: backslashes become slashes,
// "." and ".." are resolved, and leading and trailing slashes are removed.
// It returns "" for an empty prefix or one that resolves to the bucket root.
func NormalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(strings.TrimSpace(prefix), `\`, "/")
	if prefix == "" {
		return ""
	}
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	if prefix == "." {
		return ""
	}
	return prefix
}

// Key returns the object key of the file at p. The root maps to the prefix
// itself.
func Key(prefix string, p storepath.Path) string {
	switch {
	case p.IsRoot():
		return prefix
	case prefix == "":
		return p.String()
	default:
		return prefix + "/" + p.String()
	}
}

// DirKey returns the key prefix of the directory p, ending in "/". The root of
// an unprefixed store is "", which lists the whole bucket.
func DirKey(prefix string, p storepath.Path) string {
	k := Key(prefix, p)
	if k == "" {
		return ""
	}
	return k + "/"
}

// Child returns the entry name of key directly below dirKey and whether that
// entry is a directory. ok is false for the directory's own marker and for
// keys outside dirKey.
func Child(dirKey, key string) (name string, isDir, ok bool) {
	if !strings.HasPrefix(key, dirKey) || key == dirKey {
		return "", false, false
	}
	rel := strings.TrimPrefix(key, dirKey)
	name, _, found := strings.Cut(rel, "/")
	if name == "" {
		return "", false, false
	}
	return name, found, true
}
