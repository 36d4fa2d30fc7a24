package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/export"
	"ocorrencias-ponto/backend/internal/service"
	"ocorrencias-ponto/backend/pkg/response"
)

// ExportHandler file download endpoints
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// OccurrencesCSV GET /api/v1/export/occurrences.csv
func (h *ExportHandler) OccurrencesCSV(c *gin.Context) {
	h.download(c, h.exportSvc.ExportOccurrencesCSV)
}

// OccurrencesExcel GET /api/v1/export/occurrences.xlsx
func (h *ExportHandler) OccurrencesExcel(c *gin.Context) {
	h.download(c, h.exportSvc.ExportOccurrencesExcel)
}

// Table GET /api/v1/export/table.xlsx
func (h *ExportHandler) Table(c *gin.Context) {
	h.download(c, h.exportSvc.ExportTable)
}

// Chart GET /api/v1/export/charts/:chart?format=csv|xlsx
func (h *ExportHandler) Chart(c *gin.Context) {
	var req dto.ChartExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "formato deve ser csv ou xlsx")
		return
	}
	chart := c.Param("chart")
	h.download(c, func(userID string) (*bytes.Buffer, string, string, error) {
		return h.exportSvc.ExportChart(userID, chart, req.Format)
	})
}

func (h *ExportHandler) download(c *gin.Context, fn func(string) (*bytes.Buffer, string, string, error)) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, contentType, err := fn(userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, export.ErrExportEmpty):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeExportEmpty, "não há dados para exportar")
	case errors.Is(err, service.ErrUnknownChart):
		response.Error(c, http.StatusNotFound, response.CodeBadRequest, "gráfico desconhecido")
	case errors.Is(err, export.ErrExportGenerate):
		response.Error(c, http.StatusInternalServerError, response.CodeExportFailed, "falha ao gerar o arquivo")
	default:
		handleDataError(c, err)
	}
}
