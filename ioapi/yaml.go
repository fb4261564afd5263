package ioapi

import (
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// ReadYAML decodes path into v.
func ReadYAML(s *filestore.Store, path string, v any) error {
	data, err := ReadBytes(s, path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to parse YAML",
			map[string]interface{}{"path": path})
	}
	return nil
}

// WriteYAML replaces path with v encoded as YAML.
func WriteYAML(s *filestore.Store, path string, v any) (err error) {
	wc, err := OpenWrite(s, path)
	if err != nil {
		return err
	}
	defer finishWriter(wc, &err)

	enc := yaml.NewEncoder(wc)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to encode YAML",
			map[string]interface{}{"path": path})
	}
	return enc.Close()
}
