package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/model"
)

func str(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func fixture() []model.Occurrence {
	mk := func(id int64, collab, date, status, base string) model.Occurrence {
		o := model.Occurrence{RecordID: id, CollaboratorID: collab, Data: date, Date: day(date), Base: base}
		if status != "" {
			o.Situacao = str(status)
		}
		return o
	}
	return []model.Occurrence{
		mk(1, "10023", "2024-01-01", "Crédito BH", "Centro"),
		mk(2, "10023", "2024-01-05", "Débito BH", "Centro"),
		mk(3, "20045", "2024-01-10", "Atraso", "Norte"),
		mk(4, "A77", "2024-01-15", "Crédito BH", model.DefaultBase),
		mk(5, "30099", "2024-01-31", "", "Norte"),
		mk(6, "a7701", "2024-02-01", "Atraso", "Centro"),
	}
}

func ids(records []model.Occurrence) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.RecordID
	}
	return out
}

func TestApply(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  []int64
	}{
		{"zero state", State{}, []int64{1, 2, 3, 4, 5, 6}},
		{"start inclusive", State{DateRange: DateRange{Start: ptr(day("2024-01-10"))}}, []int64{3, 4, 5, 6}},
		{"end inclusive", State{DateRange: DateRange{End: ptr(day("2024-01-05"))}}, []int64{1, 2}},
		{"end with time of day", State{DateRange: DateRange{End: ptr(day("2024-01-31").Add(15 * time.Hour))}}, []int64{1, 2, 3, 4, 5}},
		{"both bounds", State{DateRange: DateRange{Start: ptr(day("2024-01-05")), End: ptr(day("2024-01-15"))}}, []int64{2, 3, 4}},
		{"statuses", State{Statuses: []string{"Crédito BH", "Atraso"}}, []int64{1, 3, 4, 6}},
		{"collaborators", State{CollaboratorIDs: []string{"10023"}}, []int64{1, 2}},
		{"registration substring", State{RegistrationQuery: "0023"}, []int64{1, 2}},
		{"registration OR case-insensitive", State{RegistrationQuery: " a77 , 45,,"}, []int64{3, 4, 6}},
		{"registration blank tokens ignored", State{RegistrationQuery: " , ,"}, []int64{1, 2, 3, 4, 5, 6}},
		{"bases", State{Bases: []string{model.DefaultBase, "Norte"}}, []int64{3, 4, 5}},
		{
			"conjunction",
			State{Statuses: []string{"Atraso"}, Bases: []string{"Centro"}, DateRange: DateRange{Start: ptr(day("2024-01-01"))}},
			[]int64{6},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(fixture(), tc.state)))
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	states := []State{
		{},
		{Statuses: []string{"Crédito BH"}},
		{RegistrationQuery: "a77,100"},
		{Bases: []string{"Norte"}, DateRange: DateRange{End: ptr(day("2024-01-20"))}},
	}
	for _, s := range states {
		once := Apply(fixture(), s)
		twice := Apply(once, s)
		assert.Equal(t, ids(once), ids(twice))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Apply(in, State{Statuses: []string{"Atraso"}})
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(in))
}

func TestMatch(t *testing.T) {
	r := fixture()[0]
	assert.True(t, Match(&r, State{CollaboratorIDs: []string{"10023"}}))
	assert.False(t, Match(&r, State{Bases: []string{"Norte"}}))
}

func TestRegistrationTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, RegistrationTokens(" a ,, b c ,"))
	assert.Nil(t, RegistrationTokens(""))
}

func TestHolder_UpdatesReplaceOneField(t *testing.T) {
	h := NewHolder()
	s, rev0 := h.State()
	require.True(t, s.IsZero())

	h.UpdateStatuses([]string{"Atraso"})
	h.UpdateBases([]string{"Norte"})
	h.UpdateRegistrationQuery("123")
	h.UpdateCollaborators([]string{"1"})
	h.UpdateDateRange(ptr(day("2024-01-01")), nil)

	s, rev := h.State()
	assert.Equal(t, rev0+5, rev)
	assert.Equal(t, []string{"Atraso"}, s.Statuses)
	assert.Equal(t, []string{"Norte"}, s.Bases)
	assert.Equal(t, "123", s.RegistrationQuery)
	assert.Equal(t, []string{"1"}, s.CollaboratorIDs)
	require.NotNil(t, s.DateRange.Start)
	assert.Nil(t, s.DateRange.End)

	h.UpdateStatuses(nil)
	s, _ = h.State()
	assert.Empty(t, s.Statuses)
	assert.Equal(t, []string{"Norte"}, s.Bases, "other fields untouched")
}

func TestHolder_StateIsACopy(t *testing.T) {
	h := NewHolder()
	in := []string{"Atraso"}
	h.UpdateStatuses(in)
	in[0] = "changed"

	s, _ := h.State()
	s.Statuses[0] = "also changed"

	s, _ = h.State()
	assert.Equal(t, []string{"Atraso"}, s.Statuses)
}

func TestHolder_Specials(t *testing.T) {
	h := NewHolder()
	h.UpdateSpecials([]classify.Category{classify.UnmarkedBHDebit, classify.WorkedDayOff, classify.WorkedDayOff})
	assert.Equal(t, []classify.Category{classify.WorkedDayOff, classify.UnmarkedBHDebit}, h.Specials())

	h.ToggleSpecial(classify.WorkedDayOff)
	assert.Equal(t, []classify.Category{classify.UnmarkedBHDebit}, h.Specials())
	h.ToggleSpecial(classify.OvertimeAbove6h)
	assert.Equal(t, []classify.Category{classify.OvertimeAbove6h, classify.UnmarkedBHDebit}, h.Specials())

	rev := h.Revision()
	h.Clear()
	s, after := h.State()
	assert.True(t, s.IsZero())
	assert.Empty(t, h.Specials())
	assert.Greater(t, after, rev)
}

func TestHolder_View(t *testing.T) {
	h := NewHolder()
	h.UpdateBases([]string{"Centro"})
	h.UpdateSpecials([]classify.Category{classify.CreditDebitSameDay})

	s, specials, rev := h.View()
	assert.Equal(t, []string{"Centro"}, s.Bases)
	assert.Equal(t, []classify.Category{classify.CreditDebitSameDay}, specials)
	assert.Equal(t, h.Revision(), rev)
}
