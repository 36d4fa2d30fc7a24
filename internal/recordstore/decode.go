package recordstore

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"ocorrencias-ponto/backend/internal/hours"
	"ocorrencias-ponto/backend/internal/model"
	"ocorrencias-ponto/backend/internal/repository"
)

var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate accepts a calendar date, or a timestamp whose date part is used
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// timeToDateHook renders driver time values (DATE columns) as ISO dates
func timeToDateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if t, ok := data.(time.Time); ok {
		return t.Format(model.DateLayout), nil
	}
	return data, nil
}

func decodeRow(row repository.Row, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       timeToDateHook,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(row)
}

// newValidator registers the row-level checks of the occurrence schema
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	})
	return v
}

// ingester turns raw rows into validated records
type ingester struct {
	validate *validator.Validate
}

func newIngester() *ingester {
	return &ingester{validate: newValidator()}
}

// unparsedDurations counts duration fields that will contribute no hours.
// Such records stay in the dataset.
func unparsedDurations(o *model.Occurrence) int {
	n := 0
	for _, d := range []*string{o.TotalHoras, o.TotalHorasOcorrencia} {
		if d != nil && !hours.ValidDuration(*d) {
			n++
		}
	}
	return n
}

// occurrence decodes and validates one row. Blank optional text becomes nil.
func (in *ingester) occurrence(row repository.Row) (model.Occurrence, error) {
	var o model.Occurrence
	if err := decodeRow(row, &o); err != nil {
		return o, fmt.Errorf("decode: %w", err)
	}

	o.CollaboratorID = strings.TrimSpace(o.CollaboratorID)
	for _, f := range []**string{
		&o.Escala, &o.CodigoHorario, &o.DescricaoHorario, &o.Inicio, &o.Termino,
		&o.TotalHoras, &o.Situacao, &o.TotalHorasOcorrencia, &o.Justificativa,
	} {
		if *f != nil && strings.TrimSpace(**f) == "" {
			*f = nil
		}
	}

	if err := in.validate.Struct(&o); err != nil {
		return o, err
	}

	o.Date, _ = parseDate(o.Data)
	o.Data = o.Date.Format(model.DateLayout)
	return o, nil
}

// ativo decodes one reference row
func (in *ingester) ativo(row repository.Row) (model.Ativo, error) {
	var a model.Ativo
	if err := decodeRow(row, &a); err != nil {
		return a, err
	}
	a.ID = strings.TrimSpace(a.ID)
	return a, nil
}
