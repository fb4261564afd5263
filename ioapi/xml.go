package ioapi

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// Element is a generic XML element tree for documents without a Go type.
// Text holds the element's character data with surrounding whitespace
// trimmed.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Element `xml:",any"`
}

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the first direct child with the given local name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

func (e *Element) trim() {
	e.Text = strings.TrimSpace(e.Text)
	for _, c := range e.Children {
		c.trim()
	}
}

// ReadXML decodes path into v with encoding/xml struct tags.
func ReadXML(s *filestore.Store, path string, v any) error {
	data, err := ReadBytes(s, path)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to parse XML",
			map[string]interface{}{"path": path})
	}
	return nil
}

// ReadXMLRoot returns the root element of the document at path.
func ReadXMLRoot(s *filestore.Store, path string) (*Element, error) {
	var root Element
	if err := ReadXML(s, path, &root); err != nil {
		return nil, err
	}
	root.trim()
	return &root, nil
}

// WriteXML replaces path with v encoded as indented UTF-8 XML preceded by an
// XML declaration. An *Element writes its tree.
func WriteXML(s *filestore.Store, path string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to encode XML",
			map[string]interface{}{"path": path})
	}
	if err := enc.Close(); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to encode XML",
			map[string]interface{}{"path": path})
	}
	buf.WriteByte('\n')
	return WriteBytes(s, path, buf.Bytes())
}
