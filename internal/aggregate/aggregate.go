// Package aggregate groups occurrence records into chart buckets.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/hours"
	"ocorrencias-ponto/backend/internal/model"
)

// NoStatus is the group of records without a situacao
const NoStatus = "Sem Situação"

// Bucket is one aggregated group
type Bucket struct {
	Date     string          `json:"date,omitempty"`
	Status   string          `json:"status,omitempty"`
	Category string          `json:"category,omitempty"`
	Label    string          `json:"label,omitempty"`
	Count    int             `json:"count"`
	Hours    decimal.Decimal `json:"-"`
}

// TotalHours returns the summed hours as a float for JSON consumers
func (b Bucket) TotalHours() float64 {
	f, _ := b.Hours.Float64()
	return f
}

// HoursFixed returns the summed hours with two decimal places
func (b Bucket) HoursFixed() string {
	return b.Hours.StringFixed(2)
}

func (b *Bucket) add(r *model.Occurrence) {
	b.Count++
	b.Hours = b.Hours.Add(OccurrenceHours(r))
}

// OccurrenceHours returns the parsed total_horas_ocorrencia, zero when absent or unparseable
func OccurrenceHours(r *model.Occurrence) decimal.Decimal {
	if r.TotalHorasOcorrencia == nil {
		return decimal.Zero
	}
	h, ok := hours.ParseDuration(*r.TotalHorasOcorrencia)
	if !ok {
		return decimal.Zero
	}
	return h
}

// SumHours totals the occurrence hours of a record set
func SumHours(records []model.Occurrence) decimal.Decimal {
	total := decimal.Zero
	for i := range records {
		total = total.Add(OccurrenceHours(&records[i]))
	}
	return total
}

func statusKey(r *model.Occurrence) string {
	if s := r.Status(); strings.TrimSpace(s) != "" {
		return s
	}
	return NoStatus
}

// GroupByStatus buckets records by situacao, most frequent first.
// Ties are ordered by status name.
func GroupByStatus(records []model.Occurrence) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for i := range records {
		key := statusKey(&records[i])
		pos, ok := index[key]
		if !ok {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, Bucket{Status: key, Hours: decimal.Zero})
		}
		buckets[pos].add(&records[i])
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Status < buckets[j].Status
	})
	return buckets
}

// GroupByDateStatus buckets records by (data, situacao), oldest date first
func GroupByDateStatus(records []model.Occurrence) []Bucket {
	type key struct{ date, status string }
	index := make(map[key]int)
	var buckets []Bucket
	for i := range records {
		k := key{records[i].Data, statusKey(&records[i])}
		pos, ok := index[k]
		if !ok {
			pos = len(buckets)
			index[k] = pos
			buckets = append(buckets, Bucket{Date: k.date, Status: k.status, Hours: decimal.Zero})
		}
		buckets[pos].add(&records[i])
	}

	// ISO dates order lexically
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Date != buckets[j].Date {
			return buckets[i].Date < buckets[j].Date
		}
		return buckets[i].Status < buckets[j].Status
	})
	return buckets
}

// SpecialSummary buckets records by special category using the dataset-wide tags.
// A record counts once in every category it carries; empty categories are omitted.
func SpecialSummary(records []model.Occurrence, tags classify.TagMap) []Bucket {
	buckets := make([]Bucket, len(classify.Categories))
	for i, c := range classify.Categories {
		buckets[i] = Bucket{Category: string(c), Label: c.ChartLabel(), Hours: decimal.Zero}
	}

	for i := range records {
		for _, c := range tags.Tags(records[i].RecordID) {
			buckets[categoryIndex(c)].add(&records[i])
		}
	}

	out := buckets[:0]
	for _, b := range buckets {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}

func categoryIndex(c classify.Category) int {
	for i, cat := range classify.Categories {
		if cat == c {
			return i
		}
	}
	return -1
}
