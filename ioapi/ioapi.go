// Package ioapi reads and writes common file formats through a
// filestore.Store.
//
// Every function takes the store as its first argument. A nil store means the
// process-wide store from filestore.ActiveStore, so scripts can stay short:
//
//	rows, err := ioapi.ReadCSV(nil, `\\fileserver\ABC\reports\q1.csv`, ioapi.CSVOptions{Comma: ';'})
//
// Writers always replace an existing file.
package ioapi

import (
	"io"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/fs/core"
)

func resolve(s *filestore.Store) (*filestore.Store, error) {
	if s != nil {
		return s, nil
	}
	return filestore.ActiveStore()
}

// ReadBytes returns the content of path.
func ReadBytes(s *filestore.Store, path string) ([]byte, error) {
	s, err := resolve(s)
	if err != nil {
		return nil, err
	}
	return s.ReadBytes(path)
}

// WriteBytes replaces the content of path with data.
func WriteBytes(s *filestore.Store, path string, data []byte) error {
	s, err := resolve(s)
	if err != nil {
		return err
	}
	return s.WriteBytes(path, data, true)
}

// OpenRead opens path for streaming reads.
func OpenRead(s *filestore.Store, path string) (io.ReadCloser, error) {
	s, err := resolve(s)
	if err != nil {
		return nil, err
	}
	return s.OpenRead(path)
}

// OpenWrite opens path for streaming writes. The file is committed on Close.
func OpenWrite(s *filestore.Store, path string) (io.WriteCloser, error) {
	s, err := resolve(s)
	if err != nil {
		return nil, err
	}
	return s.OpenWrite(path)
}

// finishWriter commits w when nothing failed and otherwise discards it, so a
// failed encode never replaces the previous content. Writers that cannot
// abort are closed.
func finishWriter(w io.WriteCloser, err *error) {
	if *err != nil {
		if a, ok := w.(core.Aborter); ok {
			_ = a.Abort()
			return
		}
		_ = w.Close()
		return
	}
	*err = w.Close()
}
