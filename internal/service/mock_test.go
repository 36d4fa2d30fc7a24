package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/recordstore"
	"ocorrencias-ponto/backend/internal/repository"
	"ocorrencias-ponto/backend/pkg/identity"
)

// ── Mock page reader ──

type mockPageReader struct {
	table string
	rows  []repository.Row
	err   error
}

func (m *mockPageReader) ReadPage(_ context.Context, from, size int) ([]repository.Row, error) {
	if m.err != nil {
		return nil, m.err
	}
	if from >= len(m.rows) {
		return nil, nil
	}
	return m.rows[from:min(from+size, len(m.rows))], nil
}

func (m *mockPageReader) Table() string { return m.table }

// ── Mock identity provider ──

type mockProvider struct {
	users    map[string]string // email -> password
	err      error
	signOuts []string
}

func (m *mockProvider) SignInWithPassword(_ context.Context, email, password string) (*identity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if pw, ok := m.users[email]; !ok || pw != password {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.User{ID: "id-" + email, Email: email}, nil
}

func (m *mockProvider) SignOut(_ context.Context, userID string) error {
	m.signOuts = append(m.signOuts, userID)
	return nil
}

// ── Fixtures ──

func num(n int) json.Number { return json.Number(strconv.Itoa(n)) }

// dashboardRows:
//
//	1 A Ana   2024-01-01 Atraso     1:00:00  (credit/debit day)
//	2 A Ana   2024-01-01 Crédito BH 2:00:00  (credit/debit day)
//	3 A Ana   2024-01-01 Débito BH  0:30:00  (credit/debit day)
//	4 B Bruno 2024-01-02 Atraso     0:30:00
//	5 C Carla 2024-01-03 -          -
//	6 B Bruno 2024-01-04 Débito BH  8:00:00  (BH debit without punches)
func dashboardRows() []repository.Row {
	return []repository.Row{
		{"id_registro": num(6), "id_colaborador": "B", "nome": "Bruno", "data": "2024-01-04", "situacao": "Débito BH", "total_horas_ocorrencia": "8:00:00"},
		{"id_registro": num(5), "id_colaborador": "C", "nome": "Carla", "data": "2024-01-03"},
		{"id_registro": num(4), "id_colaborador": "B", "nome": "Bruno", "data": "2024-01-02", "situacao": "Atraso", "total_horas_ocorrencia": "0:30:00", "inicio": "08:30"},
		{"id_registro": num(3), "id_colaborador": "A", "nome": "Ana", "data": "2024-01-01", "situacao": "Débito BH", "total_horas_ocorrencia": "0:30:00", "inicio": "08:00"},
		{"id_registro": num(2), "id_colaborador": "A", "nome": "Ana", "data": "2024-01-01", "situacao": "Crédito BH", "total_horas_ocorrencia": "2:00:00", "inicio": "08:00"},
		{"id_registro": num(1), "id_colaborador": "A", "nome": "Ana", "data": "2024-01-01", "situacao": "Atraso", "total_horas_ocorrencia": "1:00:00", "inicio": "08:00"},
	}
}

func ativoRows() []repository.Row {
	return []repository.Row{
		{"id": "A", "base": "Centro"},
		{"id": "B", "base": "Norte"},
	}
}

// newLoadedStore returns a store that already holds rows
func newLoadedStore(t *testing.T, rows []repository.Row) *recordstore.Store {
	t.Helper()
	store := newStore(rows, nil)
	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return store
}

func newStore(rows []repository.Row, fetchErr error) *recordstore.Store {
	repo := &repository.Repository{
		Occurrence: &mockPageReader{table: "ocorrencias_ponto", rows: rows, err: fetchErr},
		Ativo:      &mockPageReader{table: "ativos", rows: ativoRows()},
	}
	return recordstore.NewStore(repo, 2, classify.DefaultRules(), zap.NewNop())
}

var errConnection = errors.New("connection refused")
