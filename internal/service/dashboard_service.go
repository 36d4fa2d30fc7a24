package service

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ocorrencias-ponto/backend/internal/aggregate"
	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/filter"
	"ocorrencias-ponto/backend/internal/model"
	"ocorrencias-ponto/backend/internal/recordstore"
	"ocorrencias-ponto/backend/internal/table"
)

var (
	ErrInvalidDate     = errors.New("data inválida, use AAAA-MM-DD")
	ErrInvalidSortKey  = errors.New("coluna de ordenação desconhecida")
	ErrInvalidCategory = errors.New("categoria especial desconhecida")
)

// DashboardService filter state, table and chart views of one user's session
type DashboardService interface {
	GetFilters(userID string) *dto.FilterStateResponse
	UpdateDateRange(userID string, req *dto.DateRangeRequest) (*dto.FilterStateResponse, error)
	UpdateStatuses(userID string, req *dto.StatusesRequest) *dto.FilterStateResponse
	UpdateCollaborators(userID string, req *dto.CollaboratorsRequest) *dto.FilterStateResponse
	UpdateRegistration(userID string, req *dto.RegistrationRequest) *dto.FilterStateResponse
	UpdateBases(userID string, req *dto.BasesRequest) *dto.FilterStateResponse
	UpdateSpecials(userID string, req *dto.SpecialsRequest) (*dto.FilterStateResponse, error)
	ClearFilters(userID string) *dto.FilterStateResponse
	FilterOptions() (*dto.FilterOptionsResponse, error)

	ListOccurrences(userID string, req *dto.OccurrenceListRequest) (*dto.OccurrencePage, error)

	StatusChart(userID string) ([]dto.ChartBucket, error)
	DateStatusChart(userID string) ([]dto.ChartBucket, error)
	SpecialsChart(userID string) ([]dto.ChartBucket, error)
}

type dashboardService struct {
	views  *viewer
	logger *zap.Logger
}

// NewDashboardService creates a DashboardService
func NewDashboardService(store *recordstore.Store, sessions *SessionStore, logger *zap.Logger) DashboardService {
	return &dashboardService{views: &viewer{store: store, sessions: sessions}, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Views: every derived view is recomputed from the current
// snapshot and the session's state
// ═══════════════════════════════════════════════════════════

type viewer struct {
	store    *recordstore.Store
	sessions *SessionStore
}

// view is one user's derived record sets
type view struct {
	snap     *recordstore.Snapshot
	session  *Session
	revision uint64
	filtered []model.Occurrence // filter predicates only; charts and toolbar exports
	table    []model.Occurrence // filtered, then narrowed to selected special categories
}

func (v *viewer) build(userID string) (*view, error) {
	snap, err := v.store.Current()
	if err != nil {
		return nil, err
	}

	sess := v.sessions.Get(userID)
	state, specials, rev := sess.Filters.View()

	out := &view{snap: snap, session: sess, revision: rev}
	out.filtered = filter.Apply(snap.Records, state)
	out.table = out.filtered
	if len(specials) > 0 {
		set := make(map[classify.Category]struct{}, len(specials))
		for _, c := range specials {
			set[c] = struct{}{}
		}
		out.table = make([]model.Occurrence, 0, len(out.filtered))
		for _, r := range out.filtered {
			if snap.Tags.HasAny(r.RecordID, set) {
				out.table = append(out.table, r)
			}
		}
	}
	return out, nil
}

// sortedTable returns the table view in the session's sort order
func (v *view) sortedTable() []model.Occurrence {
	key, dir := v.session.Pager.Sort()
	return table.Sort(v.table, key, dir)
}

// ═══════════════════════════════════════════════════════════
// Filters
// ═══════════════════════════════════════════════════════════

func (s *dashboardService) GetFilters(userID string) *dto.FilterStateResponse {
	return filterState(s.views.sessions.Get(userID).Filters)
}

func (s *dashboardService) UpdateDateRange(userID string, req *dto.DateRangeRequest) (*dto.FilterStateResponse, error) {
	start, err := parseOptionalDate(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.End)
	if err != nil {
		return nil, err
	}

	h := s.views.sessions.Get(userID).Filters
	h.UpdateDateRange(start, end)
	return filterState(h), nil
}

func (s *dashboardService) UpdateStatuses(userID string, req *dto.StatusesRequest) *dto.FilterStateResponse {
	h := s.views.sessions.Get(userID).Filters
	h.UpdateStatuses(req.Statuses)
	return filterState(h)
}

func (s *dashboardService) UpdateCollaborators(userID string, req *dto.CollaboratorsRequest) *dto.FilterStateResponse {
	h := s.views.sessions.Get(userID).Filters
	h.UpdateCollaborators(req.CollaboratorIDs)
	return filterState(h)
}

func (s *dashboardService) UpdateRegistration(userID string, req *dto.RegistrationRequest) *dto.FilterStateResponse {
	h := s.views.sessions.Get(userID).Filters
	h.UpdateRegistrationQuery(req.Query)
	return filterState(h)
}

func (s *dashboardService) UpdateBases(userID string, req *dto.BasesRequest) *dto.FilterStateResponse {
	h := s.views.sessions.Get(userID).Filters
	h.UpdateBases(req.Bases)
	return filterState(h)
}

func (s *dashboardService) UpdateSpecials(userID string, req *dto.SpecialsRequest) (*dto.FilterStateResponse, error) {
	categories := make([]classify.Category, 0, len(req.Categories))
	for _, name := range req.Categories {
		c, ok := classify.ParseCategory(name)
		if !ok {
			return nil, ErrInvalidCategory
		}
		categories = append(categories, c)
	}

	h := s.views.sessions.Get(userID).Filters
	h.UpdateSpecials(categories)
	return filterState(h), nil
}

func (s *dashboardService) ClearFilters(userID string) *dto.FilterStateResponse {
	h := s.views.sessions.Get(userID).Filters
	h.Clear()
	return filterState(h)
}

func (s *dashboardService) FilterOptions() (*dto.FilterOptionsResponse, error) {
	snap, err := s.views.store.Current()
	if err != nil {
		return nil, err
	}

	statuses := map[string]struct{}{}
	bases := map[string]struct{}{}
	names := map[string]string{}
	for i := range snap.Records {
		r := &snap.Records[i]
		if st := r.Status(); st != "" {
			statuses[st] = struct{}{}
		}
		bases[r.Base] = struct{}{}
		if _, ok := names[r.CollaboratorID]; !ok || names[r.CollaboratorID] == "" {
			names[r.CollaboratorID] = r.Name
		}
	}

	col := collate.New(language.BrazilianPortuguese)
	resp := &dto.FilterOptionsResponse{
		Statuses:      sortedKeys(col, statuses),
		Bases:         sortedKeys(col, bases),
		Collaborators: make([]dto.CollaboratorOption, 0, len(names)),
	}
	for id, name := range names {
		resp.Collaborators = append(resp.Collaborators, dto.CollaboratorOption{ID: id, Name: name})
	}
	slices.SortFunc(resp.Collaborators, func(a, b dto.CollaboratorOption) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// Table
// ═══════════════════════════════════════════════════════════

func (s *dashboardService) ListOccurrences(userID string, req *dto.OccurrenceListRequest) (*dto.OccurrencePage, error) {
	// 1. sort changes
	sess := s.views.sessions.Get(userID)
	if req.Sort != "" {
		if !table.Sortable(req.Sort) {
			return nil, ErrInvalidSortKey
		}
		dir := table.Asc
		if req.Direction != "" {
			dir = table.ParseDirection(req.Direction)
		}
		sess.Pager.SetSort(req.Sort, dir)
	} else if req.Direction != "" {
		key, _ := sess.Pager.Sort()
		sess.Pager.SetSort(key, table.ParseDirection(req.Direction))
	}

	// 2. current view
	v, err := s.views.build(userID)
	if err != nil {
		return nil, err
	}

	// 3. page under the view's filter revision; a changed filter restarts at page 1
	if req.Page > 0 {
		sess.Pager.SetPage(v.revision, req.Page)
	}
	page := table.Paginate(v.sortedTable(), sess.Pager.Page(v.revision), table.DefaultPageSize)
	sess.Pager.SetPage(v.revision, page.Page)

	key, dir := sess.Pager.Sort()
	resp := &dto.OccurrencePage{
		Items:      make([]dto.OccurrenceRow, 0, len(page.Items)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.TotalRecords,
		TotalPages: page.TotalPages,
		Sort:       key,
		Direction:  string(dir),
	}
	for _, r := range page.Items {
		tags := v.snap.Tags.Tags(r.RecordID)
		if tags == nil {
			tags = []classify.Category{}
		}
		resp.Items = append(resp.Items, dto.OccurrenceRow{Occurrence: r, Tags: tags})
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// Charts
// ═══════════════════════════════════════════════════════════

func (s *dashboardService) StatusChart(userID string) ([]dto.ChartBucket, error) {
	v, err := s.views.build(userID)
	if err != nil {
		return nil, err
	}
	return chartBuckets(aggregate.GroupByStatus(v.filtered)), nil
}

func (s *dashboardService) DateStatusChart(userID string) ([]dto.ChartBucket, error) {
	v, err := s.views.build(userID)
	if err != nil {
		return nil, err
	}
	return chartBuckets(aggregate.GroupByDateStatus(v.filtered)), nil
}

func (s *dashboardService) SpecialsChart(userID string) ([]dto.ChartBucket, error) {
	v, err := s.views.build(userID)
	if err != nil {
		return nil, err
	}
	return chartBuckets(aggregate.SpecialSummary(v.filtered, v.snap.Tags)), nil
}

// ── helpers ──

func chartBuckets(buckets []aggregate.Bucket) []dto.ChartBucket {
	out := make([]dto.ChartBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.ChartBucket{
			Date:       b.Date,
			Status:     b.Status,
			Category:   b.Category,
			Label:      b.Label,
			Count:      b.Count,
			TotalHours: b.TotalHours(),
		})
	}
	return out
}

func filterState(h *filter.Holder) *dto.FilterStateResponse {
	state, specials, rev := h.View()
	resp := &dto.FilterStateResponse{
		Start:             formatOptionalDate(state.DateRange.Start),
		End:               formatOptionalDate(state.DateRange.End),
		Statuses:          nonNil(state.Statuses),
		CollaboratorIDs:   nonNil(state.CollaboratorIDs),
		RegistrationQuery: state.RegistrationQuery,
		Bases:             nonNil(state.Bases),
		Specials:          make([]string, 0, len(specials)),
		Revision:          rev,
	}
	for _, c := range specials {
		resp.Specials = append(resp.Specials, string(c))
	}
	return resp
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, *s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(model.DateLayout)
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sortedKeys(col *collate.Collator, set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	col.SortStrings(keys)
	return keys
}
