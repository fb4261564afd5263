package core

import (
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/storepath"
)

// pathError builds a PlatformError naming op and path.
func pathError(code errors.ErrorCode, op string, p storepath.Path, msg string) error {
	return errors.WithContextMap(
		errors.Newf(code, "%s %s: %s", op, display(p), msg),
		map[string]interface{}{"op": op, "path": p.String()},
	)
}

// display renders the root as "/" so messages never show an empty path.
func display(p storepath.Path) string {
	if p.IsRoot() {
		return "/"
	}
	return p.String()
}

// NotFound reports that p does not exist.
func NotFound(op string, p storepath.Path) error {
	return pathError(errors.CodeNotFound, op, p, "no such file or directory")
}

// AlreadyExists reports that p exists and op will not replace it.
func AlreadyExists(op string, p storepath.Path) error {
	return pathError(errors.CodeAlreadyExists, op, p, "already exists")
}

// IsADirectory reports that op expected a file at p.
func IsADirectory(op string, p storepath.Path) error {
	return pathError(errors.CodeIsADirectory, op, p, "is a directory")
}

// NotADirectory reports that op expected a directory at p.
func NotADirectory(op string, p storepath.Path) error {
	return pathError(errors.CodeNotADirectory, op, p, "not a directory")
}

// DirectoryNotEmpty reports that the directory p still has entries.
func DirectoryNotEmpty(op string, p storepath.Path) error {
	return pathError(errors.CodeDirectoryNotEmpty, op, p, "directory not empty")
}

// Unsupported reports that provider lacks capability c for op on p.
func Unsupported(op string, p storepath.Path, c Capability, provider string) error {
	return errors.WithContextMap(
		errors.Newf(errors.CodeUnsupported, "%s %s: capability %q not supported by provider %q",
			op, display(p), c.String(), provider),
		map[string]interface{}{
			"op":         op,
			"path":       p.String(),
			"capability": c.String(),
			"provider":   provider,
		},
	)
}

// Wrap attaches op and path to a backend error that has no filestore code yet.
// Errors that already carry a code keep it.
func Wrap(err error, code errors.ErrorCode, op string, p storepath.Path) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != errors.CodeUnknown {
		return errors.WithContextMap(err, map[string]interface{}{"op": op, "path": p.String()})
	}
	return errors.WrapWithContext(err, code, op+" "+display(p),
		map[string]interface{}{"op": op, "path": p.String()})
}
