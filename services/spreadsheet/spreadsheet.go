// Package spreadsheet reads uploaded CSV and xlsx files into records and writes tables to xlsx workbooks.
package spreadsheet

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/labasprak/asprak/core"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

var ErrUnsupportedFormat = core.NewValidationError(errors.New("File harus berformat .csv atau .xlsx"))

// IsXLSX reports whether a file name looks like an xlsx workbook.
func IsXLSX(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// ReadRecords reads the rows of a CSV file, or of the first sheet of an xlsx workbook.
func ReadRecords(name string, r io.Reader) ([]core.Record, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", "":
		return ReadCSV(r)
	case ".xlsx":
		wb, order, err := readWorkbook(r)
		if err != nil {
			return nil, err
		}
		if len(order) == 0 {
			return []core.Record{}, nil
		}
		return wb[order[0]], nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ReadCSV reads a CSV file whose first row is the header.
func ReadCSV(r io.Reader) ([]core.Record, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "CSV tidak valid"))
	}
	return toRecords(rows), nil
}

// ReadWorkbook reads every sheet of an xlsx workbook, keyed by lower-cased sheet name.
func ReadWorkbook(r io.Reader) (map[string][]core.Record, error) {
	wb, _, err := readWorkbook(r)
	return wb, err
}

func readWorkbook(r io.Reader) (map[string][]core.Record, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, core.NewValidationError(errors.Wrap(err, "Excel tidak valid"))
	}

	sheets := f.GetSheetList()
	wb := make(map[string][]core.Record, len(sheets))
	order := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading sheet %s", sheet)
		}
		name := strings.ToLower(strings.TrimSpace(sheet))
		wb[name] = toRecords(rows)
		order = append(order, name)
	}
	return wb, order, nil
}

// toRecords keys every row after the header by the header cells, skipping blank rows.
func toRecords(rows [][]string) []core.Record {
	records := make([]core.Record, 0, len(rows))
	if len(rows) == 0 {
		return records
	}
	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	for _, row := range rows[1:] {
		rec := make(core.Record, len(header))
		blank := true
		for i, h := range header {
			if h == "" {
				continue
			}
			var v string
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			if v != "" {
				blank = false
			}
			rec[h] = v
		}
		if !blank {
			records = append(records, rec)
		}
	}
	return records
}

// WriteWorkbook writes tables as sheets of a new workbook, in order.
func WriteWorkbook(w io.Writer, tables ...core.Table) error {
	if len(tables) == 0 {
		return errors.New("no table to write")
	}

	f := excelize.NewFile()
	const defaultSheet = "Sheet1"

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	for i, t := range tables {
		idx := f.NewSheet(t.Name)
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err = writeTable(f, t, bold); err != nil {
			return errors.Wrapf(err, "writing sheet %s", t.Name)
		}
	}
	if tables[0].Name != defaultSheet {
		f.DeleteSheet(defaultSheet)
		f.SetActiveSheet(f.GetSheetIndex(tables[0].Name))
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeTable(f *excelize.File, t core.Table, headerStyle int) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err = f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err = f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}

	for i, width := range t.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err = f.SetColWidth(t.Name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
