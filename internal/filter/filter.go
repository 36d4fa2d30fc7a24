// Package filter evaluates the dashboard's filter predicates against a record set.
package filter

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"ocorrencias-ponto/backend/internal/model"
)

// DateRange inclusive calendar-date bounds; nil means unbounded
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// State is the active set of filter predicates. The zero value filters nothing.
type State struct {
	DateRange         DateRange `json:"date_range"`
	Statuses          []string  `json:"statuses"`
	CollaboratorIDs   []string  `json:"collaborator_ids"`
	RegistrationQuery string    `json:"registration_query"`
	Bases             []string  `json:"bases"`
}

// IsZero reports whether no predicate is active
func (s State) IsZero() bool {
	return s.DateRange.Start == nil && s.DateRange.End == nil &&
		len(s.Statuses) == 0 && len(s.CollaboratorIDs) == 0 &&
		len(RegistrationTokens(s.RegistrationQuery)) == 0 && len(s.Bases) == 0
}

// compiled is a State prepared for repeated evaluation
type compiled struct {
	start, end    *time.Time
	statuses      map[string]struct{}
	collaborators map[string]struct{}
	tokens        []string
	bases         map[string]struct{}
	fold          cases.Caser
}

func compile(s State) *compiled {
	fold := cases.Fold()
	tokens := RegistrationTokens(s.RegistrationQuery)
	for i, t := range tokens {
		tokens[i] = fold.String(t)
	}
	return &compiled{
		start:         s.DateRange.Start,
		end:           s.DateRange.End,
		statuses:      toSet(s.Statuses),
		collaborators: toSet(s.CollaboratorIDs),
		tokens:        tokens,
		bases:         toSet(s.Bases),
		fold:          fold,
	}
}

func (c *compiled) match(r *model.Occurrence) bool {
	if c.start != nil && r.Date.Before(dayOf(*c.start)) {
		return false
	}
	if c.end != nil && r.Date.After(dayOf(*c.end)) {
		return false
	}
	if c.statuses != nil {
		if _, ok := c.statuses[r.Status()]; !ok {
			return false
		}
	}
	if c.collaborators != nil {
		if _, ok := c.collaborators[r.CollaboratorID]; !ok {
			return false
		}
	}
	if len(c.tokens) > 0 {
		id := c.fold.String(r.CollaboratorID)
		hit := false
		for _, t := range c.tokens {
			if strings.Contains(id, t) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if c.bases != nil {
		if _, ok := c.bases[r.Base]; !ok {
			return false
		}
	}
	return true
}

// Apply returns the records that satisfy every active predicate, in input order.
// The input slice is not modified.
func Apply(records []model.Occurrence, s State) []model.Occurrence {
	c := compile(s)
	out := make([]model.Occurrence, 0, len(records))
	for i := range records {
		if c.match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Match evaluates a single record
func Match(r *model.Occurrence, s State) bool {
	return compile(s).match(r)
}

// RegistrationTokens splits a registration query on commas, trimming and dropping empty tokens
func RegistrationTokens(q string) []string {
	var tokens []string
	for _, part := range strings.Split(q, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// dayOf truncates a bound to its calendar date in UTC, the zone record dates are parsed in
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
