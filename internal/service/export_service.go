package service

import (
	"bytes"
	"errors"
	"time"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/internal/aggregate"
	"ocorrencias-ponto/backend/internal/export"
	"ocorrencias-ponto/backend/internal/recordstore"
)

var ErrUnknownChart = errors.New("gráfico desconhecido")

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportService file exports of the current user's views.
//
// Every method returns the file body, a suggested filename and the content
// type; an empty record set yields export.ErrExportEmpty and no file.
type ExportService interface {
	// ExportOccurrencesCSV toolbar export of the filtered records
	ExportOccurrencesCSV(userID string) (*bytes.Buffer, string, string, error)
	// ExportOccurrencesExcel toolbar export as a single-sheet workbook
	ExportOccurrencesExcel(userID string) (*bytes.Buffer, string, string, error)
	// ExportTable full workbook of the table view, in the session's sort order
	ExportTable(userID string) (*bytes.Buffer, string, string, error)
	// ExportChart one chart's data; chart is one of the export.Chart* names
	ExportChart(userID, chart, format string) (*bytes.Buffer, string, string, error)
}

type exportService struct {
	views     *viewer
	assembler *export.Assembler
	logger    *zap.Logger
}

// NewExportService creates an ExportService; filename timestamps use loc
func NewExportService(store *recordstore.Store, sessions *SessionStore, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{
		views:     &viewer{store: store, sessions: sessions},
		assembler: export.NewAssembler(loc),
		logger:    logger,
	}
}

func (s *exportService) ExportOccurrencesCSV(userID string) (*bytes.Buffer, string, string, error) {
	v, err := s.views.build(userID)
	if err != nil {
		return nil, "", "", err
	}
	buf, name, err := s.assembler.OccurrencesCSV(v.filtered)
	return s.done(buf, name, export.ContentTypeCSV, err)
}

func (s *exportService) ExportOccurrencesExcel(userID string) (*bytes.Buffer, string, string, error) {
	v, err := s.views.build(userID)
	if err != nil {
		return nil, "", "", err
	}
	buf, name, err := s.assembler.OccurrencesWorkbook(v.filtered)
	return s.done(buf, name, export.ContentTypeXLSX, err)
}

func (s *exportService) ExportTable(userID string) (*bytes.Buffer, string, string, error) {
	v, err := s.views.build(userID)
	if err != nil {
		return nil, "", "", err
	}
	buf, name, err := s.assembler.TableWorkbook(v.sortedTable(), v.snap.Tags)
	return s.done(buf, name, export.ContentTypeXLSX, err)
}

// ═══════════════════════════════════════════════════════════
// ExportChart
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportChart(userID, chart, format string) (*bytes.Buffer, string, string, error) {
	if format == "" {
		format = FormatCSV
	}

	// 1. chart data over the filtered records
	v, err := s.views.build(userID)
	if err != nil {
		return nil, "", "", err
	}

	var (
		t     export.Table
		sheet string
	)
	switch chart {
	case export.ChartStatus:
		t, sheet = export.StatusChartTable(aggregate.GroupByStatus(v.filtered)), export.SheetChartStatus
	case export.ChartDateStatus:
		t, sheet = export.DateStatusChartTable(aggregate.GroupByDateStatus(v.filtered)), export.SheetChartDateStatus
	case export.ChartSpecials:
		t, sheet = export.SpecialsChartTable(aggregate.SpecialSummary(v.filtered, v.snap.Tags)), export.SheetChartSpecials
	default:
		return nil, "", "", ErrUnknownChart
	}

	// 2. file
	if format == FormatXLSX {
		buf, name, err := s.assembler.Workbook(chart, sheet, t)
		return s.done(buf, name, export.ContentTypeXLSX, err)
	}
	buf, name, err := s.assembler.CSV(chart, t)
	return s.done(buf, name, export.ContentTypeCSV, err)
}

func (s *exportService) done(buf *bytes.Buffer, name, contentType string, err error) (*bytes.Buffer, string, string, error) {
	if err != nil {
		if !errors.Is(err, export.ErrExportEmpty) {
			s.logger.Error("export failed", zap.String("file", name), zap.Error(err))
		}
		return nil, "", "", err
	}
	return buf, name, contentType, nil
}
