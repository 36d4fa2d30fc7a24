// Package classify tags occurrence records with special categories.
//
// Classification always runs over the full unfiltered dataset so that a
// record's tags do not depend on the filters a user has active. The result is
// computed once per loaded snapshot and shared by every derived view.
package classify

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"ocorrencias-ponto/backend/config"
	"ocorrencias-ponto/backend/internal/hours"
	"ocorrencias-ponto/backend/internal/model"
)

// Category is a special-occurrence tag
type Category string

const (
	WorkedDayOff         Category = "folgas_trabalhadas"
	OvertimeAbove6h      Category = "horas_extras_6h"
	CreditDebitSameDay   Category = "debito_credito_mesmo_dia"
	UnmarkedBHDebit      Category = "debito_bh"
	ScheduleIncompatible Category = "incompatibilidade_jornada"
)

// Categories lists every category in canonical order
var Categories = []Category{
	WorkedDayOff,
	OvertimeAbove6h,
	CreditDebitSameDay,
	UnmarkedBHDebit,
	ScheduleIncompatible,
}

var labels = map[Category]string{
	WorkedDayOff:         "Folgas Trabalhadas",
	OvertimeAbove6h:      "Horas Extras +6h",
	CreditDebitSameDay:   "Débito e Crédito",
	UnmarkedBHDebit:      "Débito BH",
	ScheduleIncompatible: "Incompatibilidade Jornada",
}

var chartLabels = map[Category]string{
	WorkedDayOff:         "Folgas Trabalhadas",
	OvertimeAbove6h:      "Horas Extras > 6h",
	CreditDebitSameDay:   "Débito e Crédito Mesmo Dia",
	UnmarkedBHDebit:      "Débito BH",
	ScheduleIncompatible: "Incompatibilidade Jornada",
}

// Label is the sheet name used for the category in workbook exports
func (c Category) Label() string { return labels[c] }

// ChartLabel is the name shown in the special-occurrence chart
func (c Category) ChartLabel() string { return chartLabels[c] }

// ParseCategory resolves a category from its identifier
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// ── Rules ──

// Rules holds the classification thresholds
type Rules struct {
	OvertimeThreshold      decimal.Decimal // hours
	ShortShiftMinutes      int
	ShortShiftLunchMinutes int
	LongShiftMinMinutes    int
	LongShiftLunchMinutes  int
}

// DefaultRules 6h overtime, 6h shift with 15 min lunch, 8h+ shift with 60 min lunch
func DefaultRules() Rules {
	return Rules{
		OvertimeThreshold:      decimal.NewFromInt(6),
		ShortShiftMinutes:      360,
		ShortShiftLunchMinutes: 15,
		LongShiftMinMinutes:    480,
		LongShiftLunchMinutes:  60,
	}
}

// NewRules builds Rules from configuration
func NewRules(cfg *config.RulesConfig) Rules {
	return Rules{
		OvertimeThreshold:      decimal.NewFromFloat(cfg.OvertimeThresholdHours),
		ShortShiftMinutes:      cfg.ShortShiftMinutes,
		ShortShiftLunchMinutes: cfg.ShortShiftLunchMinutes,
		LongShiftMinMinutes:    cfg.LongShiftMinMinutes,
		LongShiftLunchMinutes:  cfg.LongShiftLunchMinutes,
	}
}

// ── Tag map ──

// TagMap maps record id to its categories in canonical order
type TagMap map[int64][]Category

// Tags returns the categories of a record (nil when untagged)
func (m TagMap) Tags(recordID int64) []Category { return m[recordID] }

// Has reports whether a record carries the category
func (m TagMap) Has(recordID int64, c Category) bool {
	for _, t := range m[recordID] {
		if t == c {
			return true
		}
	}
	return false
}

// HasAny reports whether a record carries at least one of the categories
func (m TagMap) HasAny(recordID int64, set map[Category]struct{}) bool {
	for _, t := range m[recordID] {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// ── Classification ──

// Classify tags every record. Records must be the complete dataset; the
// credit/debit rule groups across records by (collaborator, date).
func Classify(records []model.Occurrence, rules Rules) TagMap {
	fold := cases.Fold()

	type dayKey struct{ collaborator, date string }
	type dayGroup struct {
		credit, debit bool
		ids           []int64
	}

	flags := make(map[int64]map[Category]bool, len(records))
	mark := func(id int64, c Category) {
		f := flags[id]
		if f == nil {
			f = make(map[Category]bool, 1)
			flags[id] = f
		}
		f[c] = true
	}

	groups := make(map[dayKey]*dayGroup)
	for i := range records {
		r := &records[i]
		status := fold.String(r.Status())
		credit := strings.Contains(status, "crédito")
		debit := strings.Contains(status, "débito")

		// 1. worked day off
		if r.DescricaoHorario != nil && isDayOff(fold.String(*r.DescricaoHorario)) {
			mark(r.RecordID, WorkedDayOff)
		}

		// 2. overtime above the threshold
		if credit && r.TotalHorasOcorrencia != nil {
			if h, ok := hours.ParseDuration(*r.TotalHorasOcorrencia); ok && h.GreaterThan(rules.OvertimeThreshold) {
				mark(r.RecordID, OvertimeAbove6h)
			}
		}

		// 3. collected per collaborator-day, resolved below
		k := dayKey{r.CollaboratorID, r.Data}
		g := groups[k]
		if g == nil {
			g = &dayGroup{}
			groups[k] = g
		}
		g.credit = g.credit || credit
		g.debit = g.debit || debit
		g.ids = append(g.ids, r.RecordID)

		// 4. hour-bank debit with no punches
		if debit && strings.Contains(status, "bh") && blank(r.Inicio) && blank(r.Termino) {
			mark(r.RecordID, UnmarkedBHDebit)
		}

		// 5. schedule incompatibility
		if Incompatible(r, rules) {
			mark(r.RecordID, ScheduleIncompatible)
		}
	}

	for _, g := range groups {
		if g.credit && g.debit {
			for _, id := range g.ids {
				mark(id, CreditDebitSameDay)
			}
		}
	}

	tags := make(TagMap, len(flags))
	for id, f := range flags {
		ordered := make([]Category, 0, len(f))
		for _, c := range Categories {
			if f[c] {
				ordered = append(ordered, c)
			}
		}
		tags[id] = ordered
	}
	return tags
}

// IsInvalidMarking reports whether a status describes an invalid punch
func IsInvalidMarking(status string) bool {
	s := cases.Fold().String(status)
	return strings.Contains(s, "marcações inválidas") || strings.Contains(s, "marcação inválida")
}

func isDayOff(folded string) bool {
	return strings.Contains(folded, "dsr") || strings.Contains(folded, "folga")
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// ── Schedule compatibility ──

var (
	asSeparator = regexp.MustCompile(`(?i)\s+as\s+`)
	clockInText = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// EscalaMinutes returns the shift length encoded in an escala such as
// "22:00/04:00-6X1-OP-180". ok is false when it cannot be parsed.
func EscalaMinutes(escala string) (int, bool) {
	timePart, _, _ := strings.Cut(escala, "-")
	tokens := strings.Split(strings.TrimSpace(timePart), "/")
	if len(tokens) != 2 {
		return 0, false
	}
	return hours.Span(tokens[0], tokens[1])
}

// DescricaoMinutes returns the worked minutes described by a schedule
// description: one span for two clock times, the sum of two spans for four.
// Day-off descriptions and any other shape yield ok=false.
func DescricaoMinutes(descricao string) (int, bool) {
	if isDayOff(cases.Fold().String(descricao)) {
		return 0, false
	}
	times := clockInText.FindAllString(asSeparator.ReplaceAllString(descricao, " "), -1)

	switch len(times) {
	case 2:
		return hours.Span(times[0], times[1])
	case 4:
		morning, ok := hours.Span(times[0], times[1])
		if !ok {
			return 0, false
		}
		afternoon, ok := hours.Span(times[2], times[3])
		if !ok {
			return 0, false
		}
		return morning + afternoon, true
	default:
		return 0, false
	}
}

// Incompatible reports whether the escala and the schedule description
// disagree by more than the lunch tolerance of the shift. Records where
// either side cannot be parsed are never flagged.
func Incompatible(r *model.Occurrence, rules Rules) bool {
	if r.Escala == nil || r.DescricaoHorario == nil {
		return false
	}
	escala, ok := EscalaMinutes(*r.Escala)
	if !ok {
		return false
	}
	descricao, ok := DescricaoMinutes(*r.DescricaoHorario)
	if !ok {
		return false
	}

	diff := escala - descricao
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return false
	case escala == rules.ShortShiftMinutes && diff == rules.ShortShiftLunchMinutes:
		return false
	case escala >= rules.LongShiftMinMinutes && diff == rules.LongShiftLunchMinutes:
		return false
	}
	// no tolerance is defined between the short and long shift lengths
	return true
}
