package ioapi

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

func openZip(s *filestore.Store, path string) (*zip.Reader, error) {
	data, err := ReadBytes(s, path)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to open zip archive",
			map[string]interface{}{"path": path})
	}
	return zr, nil
}

// ListZip returns the entry names of the archive at path in archive order.
// Directory entries are included.
func ListZip(s *filestore.Store, path string) ([]string, error) {
	zr, err := openZip(s, path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ExtractZip reads every file of the archive at path into memory.
// Directory entries are skipped.
func ExtractZip(s *filestore.Store, path string) (map[string][]byte, error) {
	zr, err := openZip(s, path)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to extract zip entry",
				map[string]interface{}{"path": path, "entry": f.Name})
		}
		out[f.Name] = data
	}
	return out, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}

// WriteZip replaces path with a deflate-compressed archive of files. Entries
// are written in name order.
func WriteZip(s *filestore.Store, path string, files map[string][]byte) (err error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	wc, err := OpenWrite(s, path)
	if err != nil {
		return err
	}
	defer finishWriter(wc, &err)

	zw := zip.NewWriter(wc)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to add zip entry",
				map[string]interface{}{"path": path, "entry": name})
		}
		if _, err := w.Write(files[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}
