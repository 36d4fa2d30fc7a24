package handler

import "ocorrencias-ponto/backend/internal/service"

// Handler groups every handler
type Handler struct {
	Auth      *AuthHandler
	Dataset   *DatasetHandler
	Dashboard *DashboardHandler
	Export    *ExportHandler
	Health    *HealthHandler
}

// NewHandler creates the handlers; redis may be nil
func NewHandler(svc *service.Service, redis Pinger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Dataset:   NewDatasetHandler(svc.Dataset),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Export:    NewExportHandler(svc.Export),
		Health:    NewHealthHandler(svc.Dataset, redis),
	}
}
