package ioapi

import (
	"sort"
	"strings"
	"sync"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// Codec reads one file format into a Go value.
type Codec func(s *filestore.Store, path string) (any, error)

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{}
)

func init() {
	Register(".txt", func(s *filestore.Store, path string) (any, error) {
		return ReadText(s, path)
	})
	Register(".csv", func(s *filestore.Store, path string) (any, error) {
		return ReadCSV(s, path, CSVOptions{})
	})
	Register(".json", func(s *filestore.Store, path string) (any, error) {
		var v any
		err := ReadJSON(s, path, &v)
		return v, err
	})
	readYAML := func(s *filestore.Store, path string) (any, error) {
		var v any
		err := ReadYAML(s, path, &v)
		return v, err
	}
	Register(".yaml", readYAML)
	Register(".yml", readYAML)
	Register(".zip", func(s *filestore.Store, path string) (any, error) {
		return ExtractZip(s, path)
	})
	Register(".xml", func(s *filestore.Store, path string) (any, error) {
		return ReadXMLRoot(s, path)
	})
	readXLSX := func(s *filestore.Store, path string) (any, error) {
		return ReadXLSX(s, path)
	}
	Register(".xlsx", readXLSX)
	Register(".xlsm", readXLSX)
}

func canonicalExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register installs c for the extension ext (".xlsx" or "xlsx"), replacing
// any codec already registered for it. It panics if c is nil.
func Register(ext string, c Codec) {
	if c == nil {
		panic("ioapi: Register codec is nil")
	}
	ext = canonicalExt(ext)
	if ext == "" {
		panic("ioapi: Register extension is empty")
	}

	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[ext] = c
}

// Formats returns the registered extensions, sorted.
func Formats() []string {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	out := make([]string, 0, len(codecs))
	for ext := range codecs {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func lookupCodec(ext string) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	c, ok := codecs[ext]
	return c, ok
}

// Ext returns the lower-case extension of path including the dot, or "".
// Query strings, fragments, file:// prefixes and backslashes are tolerated so
// paths pasted from a browser or Explorer work.
func Ext(path string) string {
	s := strings.TrimSpace(path)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, `\`, "/")
	if len(s) >= 7 && strings.EqualFold(s[:7], "file://") {
		s = strings.TrimLeft(s[7:], "/")
	}

	name := s[strings.LastIndexByte(s, '/')+1:]
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}

// Read decodes path with the codec registered for its extension. Built in:
// .txt (string), .csv ([][]string), .json and .yaml/.yml (any), .zip
// (map[string][]byte), .xml (*Element), .xlsx/.xlsm ([]Sheet).
//
// An unregistered extension fails errors.CodeUnsupported. Codecs are linked
// at build time, so when the store has auto-install enabled the failure is
// also logged as a warning that automatic installation is unavailable.
func Read(s *filestore.Store, path string) (any, error) {
	s, err := resolve(s)
	if err != nil {
		return nil, err
	}

	ext := Ext(path)
	c, ok := lookupCodec(ext)
	if !ok {
		return nil, unsupportedFormat(s, path, ext)
	}
	return c(s, path)
}

func unsupportedFormat(s *filestore.Store, path, ext string) error {
	hint := `import a package that calls ioapi.Register("` + ext + `", ...)`
	msg := "no codec registered for " + ext + " files"
	if ext == "" {
		hint = "add an extension to the file name or decode it with ReadBytes"
		msg = "no codec for files without an extension"
	}

	err := errors.WithContextMap(errors.New(errors.CodeUnsupported, msg), map[string]interface{}{
		"path":      path,
		"extension": ext,
		"hint":      hint,
	})

	if s.AutoInstall() {
		s.Logger().Warn("automatic installation unavailable in compiled programs",
			"extension", ext,
			"path", path,
			"hint", hint)
	}
	return err
}
