package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/ocorrencias_ponto", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "id_registro,data", q.Get("select"))
		assert.Equal(t, "data.desc,id_registro.desc", q.Get("order"))
		assert.Equal(t, "1000", q.Get("offset"))
		assert.Equal(t, "1000", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id_registro": 9007199254740993, "data": "2024-01-01"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "anon", 0)
	rows, err := c.From("ocorrencias_ponto").
		Select("id_registro", "data").
		Order("data", false).
		Order("id_registro", false).
		Range(1000, 1999).
		Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, json.Number("9007199254740993"), rows[0]["id_registro"], "large ids keep full precision")
}

func TestQuery_ExecuteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation does not exist"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "anon", 0).From("missing").Execute(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "42P01", apiErr.Code)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"u1","email":"ana@example.com"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "anon", 0)
	s, err := c.SignInWithPassword(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "u1", s.User.ID)

	_, err = c.SignInWithPassword(context.Background(), "ana@example.com", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
}

func TestSignOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "anon", 0).SignOut(context.Background(), "user-token"))
	assert.Equal(t, "Bearer user-token", gotAuth)
}
