package ioapi

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

// Sheet is one worksheet of a workbook. Rows hold formatted cell values;
// trailing empty cells and rows are dropped on read.
type Sheet struct {
	Name string
	Rows [][]string
}

func openWorkbook(s *filestore.Store, path string) (*excelize.File, error) {
	rc, err := OpenRead(s, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to open workbook",
			map[string]interface{}{"path": path})
	}
	return f, nil
}

// ReadXLSX returns every worksheet of the .xlsx or .xlsm workbook at path in
// workbook order. Macros are ignored.
func ReadXLSX(s *filestore.Store, path string) ([]Sheet, error) {
	f, err := openWorkbook(s, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to read worksheet",
				map[string]interface{}{"path": path, "sheet": name})
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// ReadXLSXSheet returns the rows of one worksheet. An empty name selects the
// active sheet.
func ReadXLSXSheet(s *filestore.Store, path, sheet string) ([][]string, error) {
	f, err := openWorkbook(s, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.WithContextMap(errors.New(errors.CodeNotFound, "worksheet not found"),
			map[string]interface{}{"path": path, "sheet": sheet})
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to read worksheet",
			map[string]interface{}{"path": path, "sheet": sheet})
	}
	return rows, nil
}

// WriteXLSX replaces path with a workbook holding sheets in order; the first
// sheet is active. Sheet names must be unique ignoring case. A .xlsm path gets
// the macro-enabled content type but no VBA project.
func WriteXLSX(s *filestore.Store, path string, sheets []Sheet) (err error) {
	if len(sheets) == 0 {
		return errors.WithContext(errors.New(errors.CodeInvalidInput, "workbook needs at least one sheet"),
			"path", path)
	}

	seen := make(map[string]bool, len(sheets))
	for _, sh := range sheets {
		key := strings.ToLower(sh.Name)
		if seen[key] {
			return errors.WithContextMap(errors.New(errors.CodeInvalidInput, "duplicate worksheet name"),
				map[string]interface{}{"path": path, "sheet": sh.Name})
		}
		seen[key] = true
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := fillWorkbook(f, sheets); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to build workbook",
			map[string]interface{}{"path": path})
	}
	// WriteTo picks the package content type from Path's extension.
	f.Path = "workbook.xlsx"
	if Ext(path) == ".xlsm" {
		f.Path = "workbook.xlsm"
	}

	wc, err := OpenWrite(s, path)
	if err != nil {
		return err
	}
	defer finishWriter(wc, &err)

	if _, err := f.WriteTo(wc); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "failed to encode workbook",
			map[string]interface{}{"path": path})
	}
	return nil
}

func fillWorkbook(f *excelize.File, sheets []Sheet) error {
	first := f.GetSheetName(0)
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(first, sh.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return err
		}

		for r, row := range sh.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sh.Name, cell, &values); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)
	return nil
}
