// Package recordstore loads the complete occurrence dataset and keeps the
// current snapshot for every derived view.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/model"
	"ocorrencias-ponto/backend/internal/repository"
)

// ── Errors ──

var (
	ErrFetch          = errors.New("falha ao carregar os dados")
	ErrLoadInProgress = errors.New("carregamento já em andamento")
	ErrNoData         = errors.New("dados ainda não carregados")
)

// DefaultBatchSize rows per page request
const DefaultBatchSize = 1000

// Snapshot is one complete load. It is never modified after publication.
type Snapshot struct {
	Records       []model.Occurrence
	Tags          classify.TagMap
	LoadedAt      time.Time
	Quarantined   int
	Duplicates    int
	BasesDegraded bool
}

// Status describes the store for health and dataset endpoints
type Status struct {
	Loaded        bool
	LoadedAt      time.Time
	Records       int
	Quarantined   int
	Duplicates    int
	BasesDegraded bool
	Loading       bool
	LastError     error
}

// Store owns the canonical record set
type Store struct {
	repo      *repository.Repository
	batchSize int
	rules     classify.Rules
	logger    *zap.Logger
	now       func() time.Time

	loading atomic.Bool

	mu      sync.RWMutex
	snap    *Snapshot
	lastErr error
}

// NewStore creates an empty store; call Refresh to load
func NewStore(repo *repository.Repository, batchSize int, rules classify.Rules, logger *zap.Logger) *Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Store{
		repo:      repo,
		batchSize: batchSize,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// Load: fetch every page, enrich with bases, classify
// ═══════════════════════════════════════════════════════════

// Load builds a new snapshot without publishing it.
// Any failed occurrence page aborts the whole load with ErrFetch.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	// 1. occurrence pages, sequentially
	rows, err := s.fetchAll(ctx, s.repo.Occurrence)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, s.repo.Occurrence.Table(), err)
	}

	// 2. reference bases; failures degrade every base to the default
	bases, degraded := s.loadBases(ctx)

	// 3. ingestion boundary
	in := newIngester()
	snap := &Snapshot{BasesDegraded: degraded}
	seen := make(map[int64]struct{}, len(rows))
	unparsed := 0
	records := make([]model.Occurrence, 0, len(rows))
	for i, row := range rows {
		o, err := in.occurrence(row)
		if err != nil {
			snap.Quarantined++
			s.logger.Warn("row quarantined",
				zap.Int("position", i),
				zap.Any("id_registro", row[model.ColRecordID]),
				zap.Error(err),
			)
			continue
		}
		if _, dup := seen[o.RecordID]; dup {
			snap.Duplicates++
			continue
		}
		seen[o.RecordID] = struct{}{}
		unparsed += unparsedDurations(&o)

		o.Base = model.DefaultBase
		if b, ok := bases[o.CollaboratorID]; ok {
			o.Base = b
		}
		records = append(records, o)
	}
	if unparsed > 0 {
		s.logger.Warn("unparseable durations count without hours", zap.Int("fields", unparsed))
	}
	if snap.Duplicates > 0 {
		s.logger.Warn("duplicate record ids dropped", zap.Int("count", snap.Duplicates))
	}

	// 4. classification over the complete set, once per snapshot
	snap.Records = records
	snap.Tags = classify.Classify(records, s.rules)
	snap.LoadedAt = s.now()

	s.logger.Info("dataset loaded",
		zap.Int("rows", len(rows)),
		zap.Int("records", len(records)),
		zap.Int("quarantined", snap.Quarantined),
		zap.Bool("bases_degraded", degraded),
	)
	return snap, nil
}

// fetchAll reads pages of batchSize until a short or empty page
func (s *Store) fetchAll(ctx context.Context, reader repository.PageReader) ([]repository.Row, error) {
	var all []repository.Row
	for from := 0; ; from += s.batchSize {
		page, err := reader.ReadPage(ctx, from, s.batchSize)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", from, err)
		}
		all = append(all, page...)
		if len(page) < s.batchSize {
			return all, nil
		}
	}
}

func (s *Store) loadBases(ctx context.Context) (map[string]string, bool) {
	if s.repo.Ativo == nil {
		return nil, false
	}
	rows, err := s.fetchAll(ctx, s.repo.Ativo)
	if err != nil {
		s.logger.Warn("reference bases unavailable, using default base",
			zap.String("table", s.repo.Ativo.Table()),
			zap.Error(err),
		)
		return nil, true
	}

	in := newIngester()
	bases := make(map[string]string, len(rows))
	for _, row := range rows {
		a, err := in.ativo(row)
		if err != nil || a.ID == "" {
			continue
		}
		if a.Base != nil && *a.Base != "" {
			bases[a.ID] = *a.Base
		}
	}
	return bases, false
}

// ═══════════════════════════════════════════════════════════
// Refresh / Current / Status
// ═══════════════════════════════════════════════════════════

// Refresh reloads and replaces the snapshot wholesale.
// A refresh while another is running fails with ErrLoadInProgress.
// On failure the previous snapshot stays current.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return nil, ErrLoadInProgress
	}
	defer s.loading.Store(false)

	snap, err := s.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		s.logger.Error("dataset refresh failed", zap.Error(err))
		return nil, err
	}
	s.snap = snap
	return snap, nil
}

// Current returns the published snapshot
func (s *Store) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNoData
	}
	return s.snap, nil
}

// Status reports the load state
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Loading: s.loading.Load(), LastError: s.lastErr}
	if s.snap != nil {
		st.Loaded = true
		st.LoadedAt = s.snap.LoadedAt
		st.Records = len(s.snap.Records)
		st.Quarantined = s.snap.Quarantined
		st.Duplicates = s.snap.Duplicates
		st.BasesDegraded = s.snap.BasesDegraded
	}
	return st
}
