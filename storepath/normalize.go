package storepath

import (
	"strings"

	"github.com/jmgilman/go/filestore/errors"
)

// Normalizer turns raw, user-supplied path strings into canonical Paths.
//
// Share is the name of the network share the store is mounted from, for example
// "ABC" for \\fileserver\ABC. When set, everything up to and including the last
// segment equal to Share (case-insensitive) is discarded, so a path copied from
// Explorer and a path typed relative to the share land on the same Path.
type Normalizer struct {
	Share string
}

// NewNormalizer returns a Normalizer for the given share name.
func NewNormalizer(share string) Normalizer {
	return Normalizer{Share: strings.TrimSpace(share)}
}

// Normalize normalizes raw with no share token.
func Normalize(raw string) (Path, error) {
	return Normalizer{}.Normalize(raw)
}

// MustNormalize is like Normalize but panics on error. Use it for literals.
func MustNormalize(raw string) Path {
	p, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Normalize converts raw into a Path.
//
// The pipeline trims whitespace and surrounding quotes, converts backslashes to
// slashes, percent-decodes, strips file: URI schemes together with their host,
// strips UNC hosts and drive letters, drops empty and "." segments, resolves
// "..", and finally strips the share prefix. It is repeated until the output no
// longer changes, which makes Normalize idempotent. A leading slash anchors the
// path at the store root.
//
// Errors carry CodeInvalidPath: empty input, NUL bytes, ".." segments that
// would climb above the store root, and inputs that reduce to the root itself
// ("/", ".", a bare share). Code that needs the root uses Root.
func (n Normalizer) Normalize(raw string) (Path, error) {
	segs, err := n.pass(raw)
	if err != nil {
		return Path{}, errors.WithContext(err, "input", raw)
	}
	out := strings.Join(segs, "/")

	// A pass that changes its input only removes bytes, so this terminates.
	for out != "" {
		segs, err = n.pass(out)
		if err != nil {
			return Path{}, errors.WithContext(err, "input", raw)
		}
		next := strings.Join(segs, "/")
		if next == out {
			break
		}
		out = next
	}

	if out == "" {
		return Path{}, errors.WithContext(
			errors.New(errors.CodeInvalidPath, "path resolves to the store root"), "input", raw)
	}
	return Path{p: out}, nil
}

func (n Normalizer) pass(raw string) ([]string, error) {
	s := trim(raw)
	if s == "" {
		return nil, errors.New(errors.CodeInvalidPath, "empty path")
	}

	s = strings.ReplaceAll(s, `\`, "/")
	s = strings.ReplaceAll(decodePercent(s), `\`, "/")
	if strings.IndexByte(s, 0) >= 0 {
		return nil, errors.New(errors.CodeInvalidPath, "path contains a NUL byte")
	}
	s = stripHost(stripScheme(trim(s)))

	var segs []string
	leading := true
	for _, seg := range strings.Split(s, "/") {
		switch {
		case seg == "" || seg == ".":
			continue
		case leading && isDrive(seg):
			continue
		case seg == "..":
			if len(segs) == 0 {
				return nil, errors.New(errors.CodeInvalidPath, "path escapes the store root")
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
		leading = false
	}

	if n.Share != "" {
		for i := len(segs) - 1; i >= 0; i-- {
			if strings.EqualFold(segs[i], n.Share) {
				segs = segs[i+1:]
				break
			}
		}
	}

	return segs, nil
}

// trim removes surrounding whitespace and any number of matching quote pairs.
func trim(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '"' && first != '\'') {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// stripScheme removes a file: scheme. For file://host/... a host that is not a
// drive letter is dropped as well.
func stripScheme(s string) string {
	if len(s) < 5 || !strings.EqualFold(s[:5], "file:") {
		return s
	}
	s = s[5:]
	if !strings.HasPrefix(s, "//") {
		return s
	}
	rest := s[2:]
	if strings.HasPrefix(rest, "/") {
		return rest
	}
	host, tail, _ := strings.Cut(rest, "/")
	if isDrive(host) {
		return rest
	}
	return "/" + tail
}

// stripHost drops the server of a UNC path (//server/share/...).
func stripHost(s string) string {
	if len(s) < 3 || s[0] != '/' || s[1] != '/' || s[2] == '/' {
		return s
	}
	_, tail, _ := strings.Cut(s[2:], "/")
	return "/" + tail
}

func isDrive(seg string) bool {
	if len(seg) != 2 || seg[1] != ':' {
		return false
	}
	c := seg[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// decodePercent decodes %XX escapes until the string stops changing. Malformed
// escapes are kept literally.
func decodePercent(s string) string {
	for strings.IndexByte(s, '%') >= 0 {
		next := decodeOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func decodeOnce(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
