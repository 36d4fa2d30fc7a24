package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/service"
	"ocorrencias-ponto/backend/pkg/response"
)

// DashboardHandler filter, table and chart endpoints
type DashboardHandler struct {
	dashSvc service.DashboardService
}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler(dashSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

// ── filters ──

// GetFilters GET /api/v1/filters
func (h *DashboardHandler) GetFilters(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	response.OK(c, h.dashSvc.GetFilters(userID))
}

// UpdateDateRange PUT /api/v1/filters/date-range
func (h *DashboardHandler) UpdateDateRange(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.DateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "datas devem estar no formato AAAA-MM-DD")
		return
	}

	state, err := h.dashSvc.UpdateDateRange(userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, state)
}

// UpdateStatuses PUT /api/v1/filters/statuses
func (h *DashboardHandler) UpdateStatuses(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.StatusesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}
	response.OK(c, h.dashSvc.UpdateStatuses(userID, &req))
}

// UpdateCollaborators PUT /api/v1/filters/collaborators
func (h *DashboardHandler) UpdateCollaborators(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CollaboratorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}
	response.OK(c, h.dashSvc.UpdateCollaborators(userID, &req))
}

// UpdateRegistration PUT /api/v1/filters/registration
func (h *DashboardHandler) UpdateRegistration(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}
	response.OK(c, h.dashSvc.UpdateRegistration(userID, &req))
}

// UpdateBases PUT /api/v1/filters/bases
func (h *DashboardHandler) UpdateBases(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.BasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}
	response.OK(c, h.dashSvc.UpdateBases(userID, &req))
}

// UpdateSpecials PUT /api/v1/filters/specials
func (h *DashboardHandler) UpdateSpecials(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SpecialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "categoria especial desconhecida")
		return
	}

	state, err := h.dashSvc.UpdateSpecials(userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, state)
}

// ClearFilters DELETE /api/v1/filters
func (h *DashboardHandler) ClearFilters(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	response.OK(c, h.dashSvc.ClearFilters(userID))
}

// FilterOptions GET /api/v1/filters/options
func (h *DashboardHandler) FilterOptions(c *gin.Context) {
	opts, err := h.dashSvc.FilterOptions()
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, opts)
}

// ── table ──

// ListOccurrences GET /api/v1/occurrences?page=&sort=&direction=
func (h *DashboardHandler) ListOccurrences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.OccurrenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}

	page, err := h.dashSvc.ListOccurrences(userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, page)
}

// ── charts ──

// StatusChart GET /api/v1/charts/status
func (h *DashboardHandler) StatusChart(c *gin.Context) {
	h.chart(c, h.dashSvc.StatusChart)
}

// DateStatusChart GET /api/v1/charts/date-status
func (h *DashboardHandler) DateStatusChart(c *gin.Context) {
	h.chart(c, h.dashSvc.DateStatusChart)
}

// SpecialsChart GET /api/v1/charts/specials
func (h *DashboardHandler) SpecialsChart(c *gin.Context) {
	h.chart(c, h.dashSvc.SpecialsChart)
}

func (h *DashboardHandler) chart(c *gin.Context, fn func(string) ([]dto.ChartBucket, error)) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	buckets, err := fn(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, buckets)
}

func (h *DashboardHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidSortKey),
		errors.Is(err, service.ErrInvalidCategory):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	default:
		handleDataError(c, err)
	}
}
