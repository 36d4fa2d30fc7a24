package dto

import "time"

// DatasetStatusResponse load state of the occurrence dataset
type DatasetStatusResponse struct {
	Loaded        bool       `json:"loaded"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	Records       int        `json:"records"`
	Quarantined   int        `json:"quarantined"`
	Duplicates    int        `json:"duplicates"`
	BasesDegraded bool       `json:"bases_degraded"`
	Loading       bool       `json:"loading"`
	LastError     string     `json:"last_error,omitempty"`
}

// HealthResponse GET /health
type HealthResponse struct {
	Status  string                `json:"status"`
	Redis   string                `json:"redis"`
	Dataset DatasetStatusResponse `json:"dataset"`
}
