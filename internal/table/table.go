// Package table sorts and paginates the filtered record set for display.
package table

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ocorrencias-ponto/backend/internal/model"
)

// DefaultPageSize rows per table page
const DefaultPageSize = 25

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case; anything else is Asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Sortable reports whether key names a column records can be sorted by
func Sortable(key string) bool {
	return slices.Contains(model.OccurrenceColumns, key)
}

// Sort returns a stably sorted copy of records.
// Absent values go last in both directions; strings use pt-BR collation.
// An unknown key returns the records in input order.
func Sort(records []model.Occurrence, key string, dir Direction) []model.Occurrence {
	out := slices.Clone(records)
	if !Sortable(key) {
		return out
	}

	coll := collate.New(language.BrazilianPortuguese)
	slices.SortStableFunc(out, func(a, b model.Occurrence) int {
		va, vb := a.Field(key), b.Field(key)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		}

		var c int
		switch key {
		case model.ColDate:
			c = a.Date.Compare(b.Date)
		case model.ColRecordID:
			c = cmp.Compare(a.RecordID, b.RecordID)
		default:
			c = coll.CompareString(va.(string), vb.(string))
		}
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Page is one page of the table
type Page struct {
	Items        []model.Occurrence
	Page         int
	PageSize     int
	TotalRecords int
	TotalPages   int
}

// TotalPages returns ceil(n/size), at least 1
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return max(1, (n+size-1)/size)
}

// Paginate slices out a 1-based page. The page is clamped into [1, TotalPages].
func Paginate(records []model.Occurrence, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(records), size)
	page = min(max(page, 1), total)

	from := (page - 1) * size
	to := min(from+size, len(records))
	return Page{
		Items:        records[from:to],
		Page:         page,
		PageSize:     size,
		TotalRecords: len(records),
		TotalPages:   total,
	}
}

// ── Pager ──

// Pager remembers a session's table position and sort.
// The page falls back to 1 whenever the filter revision changes.
type Pager struct {
	mu        sync.Mutex
	page      int
	revision  uint64
	sortKey   string
	direction Direction
}

// NewPager starts on page 1 sorted by date, newest first
func NewPager() *Pager {
	return &Pager{page: 1, sortKey: model.ColDate, direction: Desc}
}

// Page returns the current page for the given filter revision
func (p *Pager) Page(revision uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sync(revision)
	return p.page
}

// SetPage moves to page under the given filter revision
func (p *Pager) SetPage(revision uint64, page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sync(revision)
	p.page = max(page, 1)
}

// Sort returns the current sort column and direction
func (p *Pager) Sort() (string, Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sortKey, p.direction
}

// SetSort changes the sort; unknown columns are ignored
func (p *Pager) SetSort(key string, dir Direction) {
	if !Sortable(key) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sortKey, p.direction = key, dir
}

func (p *Pager) sync(revision uint64) {
	if revision != p.revision {
		p.revision = revision
		p.page = 1
	}
}
