// Package export assembles CSV files and spreadsheet workbooks from record sets.
//
// Every entry point returns the file body with a suggested filename, following
// the (*bytes.Buffer, filename, error) shape the HTTP layer streams as a download.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ── Errors ──

var (
	ErrExportEmpty    = errors.New("não há dados para exportar")
	ErrExportGenerate = errors.New("falha ao gerar o arquivo de exportação")
)

// timestampLayout is yyyy-MM-dd_HH-mm-ss
const timestampLayout = "2006-01-02_15-04-05"

// Content types of the generated files
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Table is a rectangular export: a header row and cells in column order.
// A nil cell is rendered empty.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of data rows
func (t Table) Len() int { return len(t.Rows) }

// Assembler builds export files
type Assembler struct {
	loc         *time.Location
	now         func() time.Time
	newWorkbook func() Workbook
}

// NewAssembler creates an Assembler whose filename timestamps use loc
func NewAssembler(loc *time.Location) *Assembler {
	if loc == nil {
		loc = time.Local
	}
	return &Assembler{loc: loc, now: time.Now, newWorkbook: newExcelWorkbook}
}

func (a *Assembler) filename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", name, a.now().In(a.loc).Format(timestampLayout), ext)
}

// CSV renders t as comma-separated text with every field quoted
func (a *Assembler) CSV(name string, t Table) (*bytes.Buffer, string, error) {
	if t.Len() == 0 {
		return nil, "", ErrExportEmpty
	}
	return encodeCSV(t), a.filename(name, "csv"), nil
}

// Workbook renders t into a single-sheet workbook
func (a *Assembler) Workbook(name, sheet string, t Table) (*bytes.Buffer, string, error) {
	if t.Len() == 0 {
		return nil, "", ErrExportEmpty
	}
	buf, err := a.write([]namedTable{{sheet, t}})
	if err != nil {
		return nil, "", err
	}
	return buf, a.filename(name, "xlsx"), nil
}

type namedTable struct {
	name  string
	table Table
}

func (a *Assembler) write(sheets []namedTable) (*bytes.Buffer, error) {
	wb := a.newWorkbook()
	defer wb.Close()

	for _, s := range sheets {
		if err := wb.AddSheet(s.name, s.table); err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrExportGenerate, s.name, err)
		}
	}
	buf := new(bytes.Buffer)
	if _, err := wb.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportGenerate, err)
	}
	return buf, nil
}

// ── CSV encoding ──

// encodeCSV quotes every field unconditionally, doubling embedded quotes,
// and joins records with a bare "\n".
func encodeCSV(t Table) *bytes.Buffer {
	buf := new(bytes.Buffer)
	writeCSVLine(buf, t.Columns)
	for _, row := range t.Rows {
		buf.WriteByte('\n')
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		writeCSVLine(buf, cells)
	}
	return buf
}

func writeCSVLine(buf *bytes.Buffer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(c, `"`, `""`))
		buf.WriteByte('"')
	}
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
