package ioapi

import (
	"encoding/json"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// ReadJSON decodes path into v.
func ReadJSON(s *filestore.Store, path string, v any) error {
	data, err := ReadBytes(s, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to parse JSON",
			map[string]interface{}{"path": path})
	}
	return nil
}

// WriteJSON replaces path with v encoded as indented JSON.
func WriteJSON(s *filestore.Store, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to encode JSON",
			map[string]interface{}{"path": path})
	}
	return WriteBytes(s, path, append(data, '\n'))
}
