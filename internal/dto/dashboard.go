package dto

import (
	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/model"
)

// ── filter requests ──

// DateRangeRequest either bound may be omitted
type DateRangeRequest struct {
	Start *string `json:"start" binding:"omitempty,datetime=2006-01-02"`
	End   *string `json:"end"   binding:"omitempty,datetime=2006-01-02"`
}

// StatusesRequest an empty list clears the predicate
type StatusesRequest struct {
	Statuses []string `json:"statuses"`
}

// CollaboratorsRequest an empty list clears the predicate
type CollaboratorsRequest struct {
	CollaboratorIDs []string `json:"collaborator_ids"`
}

// RegistrationRequest comma-separated collaborator id fragments
type RegistrationRequest struct {
	Query string `json:"query" binding:"max=500"`
}

// BasesRequest an empty list clears the predicate
type BasesRequest struct {
	Bases []string `json:"bases"`
}

// SpecialsRequest special categories kept in the table view
type SpecialsRequest struct {
	Categories []string `json:"categories" binding:"dive,oneof=folgas_trabalhadas horas_extras_6h debito_credito_mesmo_dia debito_bh incompatibilidade_jornada"`
}

// ── filter responses ──

// FilterStateResponse the session's filter state
type FilterStateResponse struct {
	Start             *string  `json:"start"`
	End               *string  `json:"end"`
	Statuses          []string `json:"statuses"`
	CollaboratorIDs   []string `json:"collaborator_ids"`
	RegistrationQuery string   `json:"registration_query"`
	Bases             []string `json:"bases"`
	Specials          []string `json:"specials"`
	Revision          uint64   `json:"revision"`
}

// CollaboratorOption one selectable collaborator
type CollaboratorOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterOptionsResponse distinct values available in the dataset
type FilterOptionsResponse struct {
	Statuses      []string             `json:"statuses"`
	Collaborators []CollaboratorOption `json:"collaborators"`
	Bases         []string             `json:"bases"`
}

// ── table ──

// OccurrenceListRequest GET /occurrences query.
// A missing page keeps the session's page; sort and direction update the session's sort.
type OccurrenceListRequest struct {
	Page      int    `form:"page"      binding:"omitempty,min=1"`
	Sort      string `form:"sort"`
	Direction string `form:"direction" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// OccurrenceRow is a record with its special-category tags
type OccurrenceRow struct {
	model.Occurrence
	Tags []classify.Category `json:"tags"`
}

// OccurrencePage is one table page
type OccurrencePage struct {
	Items      []OccurrenceRow `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Sort       string          `json:"sort"`
	Direction  string          `json:"direction"`
}

// ── charts ──

// ChartBucket one aggregated chart entry
type ChartBucket struct {
	Date       string  `json:"date,omitempty"`
	Status     string  `json:"status,omitempty"`
	Category   string  `json:"category,omitempty"`
	Label      string  `json:"label,omitempty"`
	Count      int     `json:"count"`
	TotalHours float64 `json:"total_hours"`
}

// ChartExportRequest GET /export/charts/:chart query
type ChartExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}
