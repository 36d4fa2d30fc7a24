package filter

import (
	"slices"
	"sync"
	"time"

	"ocorrencias-ponto/backend/internal/classify"
)

// Holder owns one session's filter state.
// Each update replaces exactly one sub-field and bumps the revision, which
// views use to notice that their derived state (the current page) is stale.
type Holder struct {
	mu       sync.RWMutex
	state    State
	specials []classify.Category
	revision uint64
}

// NewHolder returns a holder with no active predicate
func NewHolder() *Holder {
	return &Holder{}
}

// State returns a copy of the current state and its revision
func (h *Holder) State() (State, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneState(h.state), h.revision
}

// View returns the state, the selected special categories and the revision
// under one lock
func (h *Holder) View() (State, []classify.Category, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneState(h.state), slices.Clone(h.specials), h.revision
}

// Specials returns the selected special categories
func (h *Holder) Specials() []classify.Category {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.specials)
}

// Revision returns the current revision
func (h *Holder) Revision() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.revision
}

// UpdateDateRange replaces the date range
func (h *Holder) UpdateDateRange(start, end *time.Time) {
	h.update(func(s *State) { s.DateRange = DateRange{Start: start, End: end} })
}

// UpdateStatuses replaces the status set
func (h *Holder) UpdateStatuses(statuses []string) {
	h.update(func(s *State) { s.Statuses = slices.Clone(statuses) })
}

// UpdateCollaborators replaces the collaborator set
func (h *Holder) UpdateCollaborators(ids []string) {
	h.update(func(s *State) { s.CollaboratorIDs = slices.Clone(ids) })
}

// UpdateRegistrationQuery replaces the free-text registration query
func (h *Holder) UpdateRegistrationQuery(q string) {
	h.update(func(s *State) { s.RegistrationQuery = q })
}

// UpdateBases replaces the base set
func (h *Holder) UpdateBases(bases []string) {
	h.update(func(s *State) { s.Bases = slices.Clone(bases) })
}

// UpdateSpecials replaces the selected special categories. Duplicates are
// collapsed and the result kept in canonical category order.
func (h *Holder) UpdateSpecials(categories []classify.Category) {
	selected := make([]classify.Category, 0, len(categories))
	for _, c := range classify.Categories {
		if slices.Contains(categories, c) {
			selected = append(selected, c)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.specials = selected
	h.revision++
}

// ToggleSpecial adds the category when absent and removes it otherwise
func (h *Holder) ToggleSpecial(c classify.Category) {
	current := h.Specials()
	if i := slices.Index(current, c); i >= 0 {
		current = slices.Delete(current, i, i+1)
	} else {
		current = append(current, c)
	}
	h.UpdateSpecials(current)
}

// Clear resets every predicate, including the special categories
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = State{}
	h.specials = nil
	h.revision++
}

func (h *Holder) update(fn func(*State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.state)
	h.revision++
}

func cloneState(s State) State {
	return State{
		DateRange:         s.DateRange,
		Statuses:          slices.Clone(s.Statuses),
		CollaboratorIDs:   slices.Clone(s.CollaboratorIDs),
		RegistrationQuery: s.RegistrationQuery,
		Bases:             slices.Clone(s.Bases),
	}
}
