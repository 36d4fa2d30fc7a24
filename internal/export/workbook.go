package export

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook is the spreadsheet builder the Assembler writes sheets into
type Workbook interface {
	AddSheet(name string, t Table) error
	WriteTo(w io.Writer) (int64, error)
	Close() error
}

// excelWorkbook writes xlsx files through excelize
type excelWorkbook struct {
	f           *excelize.File
	headerStyle int
	sheets      int
}

func newExcelWorkbook() Workbook {
	f := excelize.NewFile()
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return &excelWorkbook{f: f, headerStyle: style}
}

func (w *excelWorkbook) AddSheet(name string, t Table) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	if w.sheets == 0 {
		// drop the default sheet once a real one exists
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
		w.f.SetActiveSheet(0)
	}
	w.sheets++

	sw, err := w.f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = excelize.Cell{StyleID: w.headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			if s, ok := v.(*string); ok {
				if s == nil {
					v = nil
				} else {
					v = *s
				}
			}
			cells[i] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func (w *excelWorkbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

func (w *excelWorkbook) Close() error {
	return w.f.Close()
}
