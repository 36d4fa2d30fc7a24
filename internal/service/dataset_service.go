package service

import (
	"context"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/recordstore"
)

// DatasetService exposes the load state of the record store and triggers reloads
type DatasetService interface {
	Status() *dto.DatasetStatusResponse
	// Refresh reloads the dataset; errors are recordstore.ErrLoadInProgress or wrap recordstore.ErrFetch
	Refresh(ctx context.Context) (*dto.DatasetStatusResponse, error)
}

type datasetService struct {
	store  *recordstore.Store
	logger *zap.Logger
}

// NewDatasetService creates a DatasetService
func NewDatasetService(store *recordstore.Store, logger *zap.Logger) DatasetService {
	return &datasetService{store: store, logger: logger}
}

func (s *datasetService) Status() *dto.DatasetStatusResponse {
	return toDatasetStatus(s.store.Status())
}

func (s *datasetService) Refresh(ctx context.Context) (*dto.DatasetStatusResponse, error) {
	if _, err := s.store.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.Status(), nil
}

func toDatasetStatus(st recordstore.Status) *dto.DatasetStatusResponse {
	resp := &dto.DatasetStatusResponse{
		Loaded:        st.Loaded,
		Records:       st.Records,
		Quarantined:   st.Quarantined,
		Duplicates:    st.Duplicates,
		BasesDegraded: st.BasesDegraded,
		Loading:       st.Loading,
	}
	if st.Loaded {
		t := st.LoadedAt
		resp.LoadedAt = &t
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	return resp
}
