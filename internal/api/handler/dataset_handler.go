package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/recordstore"
	"ocorrencias-ponto/backend/internal/service"
	"ocorrencias-ponto/backend/pkg/response"
)

// DatasetHandler dataset load endpoints
type DatasetHandler struct {
	datasetSvc service.DatasetService
}

// NewDatasetHandler creates a DatasetHandler
func NewDatasetHandler(datasetSvc service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetSvc: datasetSvc}
}

// Status GET /api/v1/dataset/status
func (h *DatasetHandler) Status(c *gin.Context) {
	response.OK(c, h.datasetSvc.Status())
}

// Refresh POST /api/v1/dataset/refresh
func (h *DatasetHandler) Refresh(c *gin.Context) {
	status, err := h.datasetSvc.Refresh(c.Request.Context())
	if err != nil {
		handleDataError(c, err)
		return
	}
	response.OK(c, status)
}

// handleDataError maps record store errors shared by every data endpoint
func handleDataError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recordstore.ErrNoData):
		response.Error(c, http.StatusServiceUnavailable, response.CodeNoData, "dados ainda não carregados")
	case errors.Is(err, recordstore.ErrLoadInProgress):
		response.Error(c, http.StatusConflict, response.CodeLoadInProgress, "carregamento já em andamento")
	case errors.Is(err, recordstore.ErrFetch):
		response.ErrorWithDetails(c, http.StatusBadGateway, response.CodeFetchFailed, "falha ao carregar os dados", err.Error())
	default:
		response.InternalError(c)
	}
}
