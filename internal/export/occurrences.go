package export

import (
	"bytes"
	"slices"

	"ocorrencias-ponto/backend/internal/aggregate"
	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/hours"
	"ocorrencias-ponto/backend/internal/model"
)

// File name prefixes
const (
	OccurrencesFileName = "ocorrencias_ponto"
	TableFileName       = "tabela_ocorrencias"
)

// Sheet names of the full workbook
const (
	SheetData            = "Dados"
	SheetInvalidMarkings = "Marcações Inválidas"
	SheetByCollaborator  = "Ocorrências por Colaborador"
	SheetByBase          = "Ocorrências por Base"
	SheetSummary         = "Resumo"
	SheetOccurrences     = "Ocorrências"
)

// Extra columns of the schedule-incompatibility sheet
const (
	ColEscalaHours    = "horas_calculadas_escala"
	ColDescricaoHours = "horas_calculadas_descricao"
)

// ── Toolbar export ──

type labelledColumn struct {
	label string
	col   string
}

var toolbarColumns = []labelledColumn{
	{"ID Registro", model.ColRecordID},
	{"ID Colaborador", model.ColCollaboratorID},
	{"Nome", model.ColName},
	{"Data", model.ColDate},
	{"Escala", model.ColEscala},
	{"Código Horário", model.ColCodigoHorario},
	{"Descrição Horário", model.ColDescricaoHorario},
	{"Início", model.ColInicio},
	{"Término", model.ColTermino},
	{"Total Horas", model.ColTotalHoras},
	{"Situação", model.ColSituacao},
	{"Total Horas Ocorrência", model.ColTotalHorasOcorrencia},
}

// OccurrenceTable projects records onto the fixed, labelled toolbar columns
func OccurrenceTable(records []model.Occurrence) Table {
	t := Table{Columns: make([]string, len(toolbarColumns)), Rows: make([][]any, len(records))}
	for i, c := range toolbarColumns {
		t.Columns[i] = c.label
	}
	for r := range records {
		row := make([]any, len(toolbarColumns))
		for i, c := range toolbarColumns {
			row[i] = records[r].Field(c.col)
		}
		t.Rows[r] = row
	}
	return t
}

// OccurrencesCSV exports records with the toolbar columns as CSV
func (a *Assembler) OccurrencesCSV(records []model.Occurrence) (*bytes.Buffer, string, error) {
	return a.CSV(OccurrencesFileName, OccurrenceTable(records))
}

// OccurrencesWorkbook exports records with the toolbar columns as a single-sheet workbook
func (a *Assembler) OccurrencesWorkbook(records []model.Occurrence) (*bytes.Buffer, string, error) {
	return a.Workbook(OccurrencesFileName, SheetOccurrences, OccurrenceTable(records))
}

// ── Full table workbook ──

// leadingColumns come first on every record sheet; the rest follow in schema order
var leadingColumns = []string{
	model.ColDate,
	model.ColCollaboratorID,
	model.ColName,
	model.ColBase,
	model.ColSituacao,
	model.ColDescricaoHorario,
	model.ColTotalHorasOcorrencia,
	model.ColJustificativa,
}

// RecordColumns is the column order of record sheets
var RecordColumns = func() []string {
	cols := slices.Clone(leadingColumns)
	for _, c := range model.OccurrenceColumns {
		if !slices.Contains(leadingColumns, c) {
			cols = append(cols, c)
		}
	}
	return cols
}()

// categorySheets is the order of the breakdown sheets after Dados
var categorySheets = []classify.Category{
	classify.CreditDebitSameDay,
	classify.OvertimeAbove6h,
	classify.WorkedDayOff,
	classify.UnmarkedBHDebit,
	classify.ScheduleIncompatible,
}

// breakdown is one category's share of the exported records
type breakdown struct {
	sheet   string
	records []model.Occurrence
}

func recordTable(records []model.Occurrence) Table {
	t := Table{Columns: RecordColumns, Rows: make([][]any, len(records))}
	for r := range records {
		row := make([]any, len(RecordColumns))
		for i, c := range RecordColumns {
			row[i] = records[r].Field(c)
		}
		t.Rows[r] = row
	}
	return t
}

// incompatibilityTable adds the computed shift lengths of both schedule fields
func incompatibilityTable(records []model.Occurrence) Table {
	t := recordTable(records)
	t.Columns = append(slices.Clone(t.Columns), ColEscalaHours, ColDescricaoHours)
	for i := range records {
		t.Rows[i] = append(t.Rows[i], escalaHours(&records[i]), descricaoHours(&records[i]))
	}
	return t
}

func escalaHours(r *model.Occurrence) string {
	if r.Escala != nil {
		if m, ok := classify.EscalaMinutes(*r.Escala); ok {
			return hours.FormatMinutes(m)
		}
	}
	return "N/A"
}

func descricaoHours(r *model.Occurrence) string {
	if r.DescricaoHorario != nil {
		if m, ok := classify.DescricaoMinutes(*r.DescricaoHorario); ok {
			return hours.FormatMinutes(m)
		}
	}
	return "N/A"
}

// dedupeByCollaboratorDay keeps the first record of each (collaborator, date)
func dedupeByCollaboratorDay(records []model.Occurrence) []model.Occurrence {
	type key struct{ collaborator, date string }
	seen := make(map[key]struct{}, len(records))
	out := make([]model.Occurrence, 0, len(records))
	for _, r := range records {
		k := key{r.CollaboratorID, r.Data}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func summaryRow(sheet string, records []model.Occurrence) []any {
	return []any{sheet, len(records), aggregate.SumHours(records).StringFixed(2)}
}

// TableWorkbook builds the multi-sheet workbook of the table view.
//
// Sheet order: Dados, one sheet per non-empty category, the per-collaborator
// and per-base rollups, then Resumo. Category membership comes from tags,
// which must be computed over the whole dataset.
func (a *Assembler) TableWorkbook(records []model.Occurrence, tags classify.TagMap) (*bytes.Buffer, string, error) {
	if len(records) == 0 {
		return nil, "", ErrExportEmpty
	}

	// 1. Dados
	sheets := []namedTable{{SheetData, recordTable(records)}}
	summary := Table{Columns: []string{"Aba", "Total de Ocorrências", "Total de Horas"}}
	summary.Rows = append(summary.Rows, summaryRow(SheetData, records))

	// 2. category breakdowns
	parts := make([]breakdown, 0, len(categorySheets)+1)
	var invalid []model.Occurrence
	for _, r := range records {
		if classify.IsInvalidMarking(r.Status()) {
			invalid = append(invalid, r)
		}
	}
	parts = append(parts, breakdown{SheetInvalidMarkings, invalid})
	for _, c := range categorySheets {
		var members []model.Occurrence
		for _, r := range records {
			if tags.Has(r.RecordID, c) {
				members = append(members, r)
			}
		}
		parts = append(parts, breakdown{c.Label(), members})
	}

	for _, p := range parts {
		if len(p.records) == 0 {
			continue
		}
		if p.sheet == classify.ScheduleIncompatible.Label() {
			unique := dedupeByCollaboratorDay(p.records)
			sheets = append(sheets, namedTable{p.sheet, incompatibilityTable(unique)})
			summary.Rows = append(summary.Rows, summaryRow(p.sheet, unique))
			continue
		}
		sheets = append(sheets, namedTable{p.sheet, recordTable(p.records)})
		summary.Rows = append(summary.Rows, summaryRow(p.sheet, p.records))
	}

	// 3. rollups count every categorized record, duplicates included
	sheets = append(sheets,
		namedTable{SheetByCollaborator, collaboratorRollup(records, parts)},
		namedTable{SheetByBase, baseRollup(records, parts)},
	)

	// 4. Resumo
	sheets = append(sheets, namedTable{SheetSummary, summary})

	buf, err := a.write(sheets)
	if err != nil {
		return nil, "", err
	}
	return buf, a.filename(TableFileName, "xlsx"), nil
}

// ── Rollups ──

type rollupRow struct {
	key    []any
	counts []int
	total  int
}

func rollupColumns(keyCols []string, parts []breakdown) []string {
	cols := slices.Clone(keyCols)
	for _, p := range parts {
		cols = append(cols, p.sheet)
	}
	return append(cols, "Total")
}

// rollup counts category members per group key. Groups keep first-seen order
// and are then stably sorted by total, highest first.
func rollup(records []model.Occurrence, parts []breakdown, keyOf func(*model.Occurrence) string, keyCells func(*model.Occurrence) []any) [][]any {
	index := make(map[string]int)
	var rows []rollupRow
	for i := range records {
		k := keyOf(&records[i])
		if _, ok := index[k]; ok {
			continue
		}
		index[k] = len(rows)
		rows = append(rows, rollupRow{key: keyCells(&records[i]), counts: make([]int, len(parts))})
	}

	for pi, p := range parts {
		for i := range p.records {
			row := &rows[index[keyOf(&p.records[i])]]
			row.counts[pi]++
			row.total++
		}
	}

	slices.SortStableFunc(rows, func(a, b rollupRow) int { return b.total - a.total })

	out := make([][]any, len(rows))
	for i, r := range rows {
		cells := slices.Clone(r.key)
		for _, c := range r.counts {
			cells = append(cells, c)
		}
		out[i] = append(cells, r.total)
	}
	return out
}

func baseOf(r *model.Occurrence) string {
	if r.Base == "" {
		return model.DefaultBase
	}
	return r.Base
}

func collaboratorRollup(records []model.Occurrence, parts []breakdown) Table {
	return Table{
		Columns: rollupColumns([]string{model.ColCollaboratorID, model.ColName, model.ColBase}, parts),
		Rows: rollup(records, parts,
			func(r *model.Occurrence) string { return r.CollaboratorID },
			func(r *model.Occurrence) []any { return []any{r.CollaboratorID, r.Name, baseOf(r)} },
		),
	}
}

func baseRollup(records []model.Occurrence, parts []breakdown) Table {
	return Table{
		Columns: rollupColumns([]string{model.ColBase}, parts),
		Rows: rollup(records, parts,
			baseOf,
			func(r *model.Occurrence) []any { return []any{baseOf(r)} },
		),
	}
}

// ── Chart exports ──

// Chart export names and sheet titles
const (
	ChartStatus          = "ocorrencias_por_situacao"
	ChartDateStatus      = "ocorrencias_por_data_situacao"
	ChartSpecials        = "ocorrencias_especiais"
	SheetChartStatus     = "Ocorrências por Situação"
	SheetChartDateStatus = "Ocorrências por Data e Situação"
	SheetChartSpecials   = "Ocorrências Especiais"
)

// StatusChartTable tabulates status buckets
func StatusChartTable(buckets []aggregate.Bucket) Table {
	t := Table{Columns: []string{"Situação", "Total de Ocorrências", "Total de Horas"}}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []any{b.Status, b.Count, b.HoursFixed()})
	}
	return t
}

// DateStatusChartTable tabulates date-by-status buckets
func DateStatusChartTable(buckets []aggregate.Bucket) Table {
	t := Table{Columns: []string{"Data", "Situação", "Total de Ocorrências", "Total de Horas"}}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []any{b.Date, b.Status, b.Count, b.HoursFixed()})
	}
	return t
}

// SpecialsChartTable tabulates special-category buckets
func SpecialsChartTable(buckets []aggregate.Bucket) Table {
	t := Table{Columns: []string{"Categoria", "Total de Ocorrências", "Total de Horas"}}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []any{b.Label, b.Count, b.HoursFixed()})
	}
	return t
}
