package ioapi

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// UTF8 is the default text encoding.
const UTF8 = "utf-8"

// LookupEncoding returns the encoding registered under a WHATWG label such as
// "utf-8", "windows-1251", "cp1251" or "cp866". An empty name is UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UTF8
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "unknown text encoding",
			map[string]interface{}{"encoding": name})
	}
	return enc, nil
}

// decoder returns a decoder that strips a byte order mark and replaces
// invalid input with U+FFFD.
func decoder(name string) (transform.Transformer, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return unicode.UTF8BOM.NewDecoder(), nil
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// encoder returns an encoder that replaces runes the encoding cannot
// represent.
func encoder(name string) (transform.Transformer, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return encoding.ReplaceUnsupported(enc.NewEncoder()), nil
}

// ReadText returns path decoded as UTF-8 without a leading byte order mark.
func ReadText(s *filestore.Store, path string) (string, error) {
	return ReadTextEncoding(s, path, UTF8)
}

// ReadTextEncoding returns path decoded from the named encoding.
func ReadTextEncoding(s *filestore.Store, path, enc string) (string, error) {
	dec, err := decoder(enc)
	if err != nil {
		return "", err
	}
	data, err := ReadBytes(s, path)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to decode text",
			map[string]interface{}{"path": path, "encoding": enc})
	}
	return string(out), nil
}

// WriteText replaces path with text encoded as UTF-8.
func WriteText(s *filestore.Store, path, text string) error {
	return WriteBytes(s, path, []byte(text))
}

// WriteTextEncoding replaces path with text in the named encoding.
func WriteTextEncoding(s *filestore.Store, path, text, enc string) error {
	e, err := encoder(enc)
	if err != nil {
		return err
	}
	out, _, err := transform.Bytes(e, []byte(text))
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to encode text",
			map[string]interface{}{"path": path, "encoding": enc})
	}
	return WriteBytes(s, path, out)
}

// textReader wraps r with the named decoder.
func textReader(r io.Reader, enc string) (io.Reader, error) {
	dec, err := decoder(enc)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, dec), nil
}

// textWriter wraps w with the named encoder. UTF-8 output is passed through
// unchanged.
func textWriter(w io.Writer, enc string) (io.WriteCloser, error) {
	if e, err := LookupEncoding(enc); err != nil {
		return nil, err
	} else if e == unicode.UTF8 {
		return nopCloser{w}, nil
	}
	e, err := encoder(enc)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, e), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// utf8BOM is written ahead of CSV output when CSVOptions.BOM is set.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}
