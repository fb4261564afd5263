package ioapi

import (
	"encoding/csv"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// CSVOptions controls CSV parsing and formatting. The zero value reads and
// writes comma-separated UTF-8.
type CSVOptions struct {
	// Comma is the field delimiter. Default: ','.
	Comma rune

	// Comment starts a comment line when reading. Zero disables comments.
	Comment rune

	// LazyQuotes allows quotes in unquoted fields and unescaped quotes in
	// quoted fields.
	LazyQuotes bool

	// Encoding names the text encoding (see LookupEncoding). Default: UTF-8.
	Encoding string

	// BOM writes a UTF-8 byte order mark first. Spreadsheet programs use it to
	// detect the encoding. Ignored when reading; a leading BOM is always
	// stripped.
	BOM bool
}

func (o CSVOptions) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

// ReadCSV returns every record of path. Records may have different numbers of
// fields.
func ReadCSV(s *filestore.Store, path string, opts CSVOptions) ([][]string, error) {
	rc, err := OpenRead(s, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	r, err := textReader(rc, opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.comma()
	cr.Comment = opts.Comment
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to parse CSV",
			map[string]interface{}{"path": path})
	}
	if records == nil {
		records = [][]string{}
	}
	return records, nil
}

// ReadCSVMaps reads path and returns one map per data row, keyed by the
// header row. Missing trailing fields map to "".
func ReadCSVMaps(s *filestore.Store, path string, opts CSVOptions) ([]map[string]string, error) {
	records, err := ReadCSV(s, path, opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []map[string]string{}, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV replaces path with records.
func WriteCSV(s *filestore.Store, path string, records [][]string, opts CSVOptions) (err error) {
	if _, err := LookupEncoding(opts.Encoding); err != nil {
		return err
	}

	wc, err := OpenWrite(s, path)
	if err != nil {
		return err
	}
	defer finishWriter(wc, &err)

	if opts.BOM {
		if _, err := wc.Write(utf8BOM); err != nil {
			return err
		}
	}

	tw, err := textWriter(wc, opts.Encoding)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(tw)
	cw.Comma = opts.comma()
	if err := cw.WriteAll(records); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to write CSV",
			map[string]interface{}{"path": path})
	}
	return tw.Close()
}
