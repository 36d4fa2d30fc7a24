package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/api/middleware"
	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/export"
	"ocorrencias-ponto/backend/internal/recordstore"
	"ocorrencias-ponto/backend/internal/service"
	"ocorrencias-ponto/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	logoutJTI     string
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time, jti string) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, userID, email string) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: userID, Email: email}, nil
}

// ── Mock DatasetService ──

type mockDatasetService struct {
	status     *dto.DatasetStatusResponse
	refreshErr error
}

func (m *mockDatasetService) Status() *dto.DatasetStatusResponse { return m.status }
func (m *mockDatasetService) Refresh(_ context.Context) (*dto.DatasetStatusResponse, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.status, nil
}

// ── Mock DashboardService ──

type mockDashboardService struct {
	state     *dto.FilterStateResponse
	stateErr  error
	options   *dto.FilterOptionsResponse
	page      *dto.OccurrencePage
	listErr   error
	lastList  *dto.OccurrenceListRequest
	buckets   []dto.ChartBucket
	chartErr  error
	lastRange *dto.DateRangeRequest
}

func (m *mockDashboardService) GetFilters(string) *dto.FilterStateResponse { return m.state }
func (m *mockDashboardService) UpdateDateRange(_ string, req *dto.DateRangeRequest) (*dto.FilterStateResponse, error) {
	m.lastRange = req
	return m.state, m.stateErr
}
func (m *mockDashboardService) UpdateStatuses(string, *dto.StatusesRequest) *dto.FilterStateResponse {
	return m.state
}
func (m *mockDashboardService) UpdateCollaborators(string, *dto.CollaboratorsRequest) *dto.FilterStateResponse {
	return m.state
}
func (m *mockDashboardService) UpdateRegistration(string, *dto.RegistrationRequest) *dto.FilterStateResponse {
	return m.state
}
func (m *mockDashboardService) UpdateBases(string, *dto.BasesRequest) *dto.FilterStateResponse {
	return m.state
}
func (m *mockDashboardService) UpdateSpecials(string, *dto.SpecialsRequest) (*dto.FilterStateResponse, error) {
	return m.state, m.stateErr
}
func (m *mockDashboardService) ClearFilters(string) *dto.FilterStateResponse { return m.state }
func (m *mockDashboardService) FilterOptions() (*dto.FilterOptionsResponse, error) {
	return m.options, m.stateErr
}
func (m *mockDashboardService) ListOccurrences(_ string, req *dto.OccurrenceListRequest) (*dto.OccurrencePage, error) {
	m.lastList = req
	return m.page, m.listErr
}
func (m *mockDashboardService) StatusChart(string) ([]dto.ChartBucket, error) {
	return m.buckets, m.chartErr
}
func (m *mockDashboardService) DateStatusChart(string) ([]dto.ChartBucket, error) {
	return m.buckets, m.chartErr
}
func (m *mockDashboardService) SpecialsChart(string) ([]dto.ChartBucket, error) {
	return m.buckets, m.chartErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf         *bytes.Buffer
	filename    string
	contentType string
	err         error
	lastChart   string
	lastFormat  string
}

func (m *mockExportService) result() (*bytes.Buffer, string, string, error) {
	return m.buf, m.filename, m.contentType, m.err
}
func (m *mockExportService) ExportOccurrencesCSV(string) (*bytes.Buffer, string, string, error) {
	return m.result()
}
func (m *mockExportService) ExportOccurrencesExcel(string) (*bytes.Buffer, string, string, error) {
	return m.result()
}
func (m *mockExportService) ExportTable(string) (*bytes.Buffer, string, string, error) {
	return m.result()
}
func (m *mockExportService) ExportChart(_ string, chart, format string) (*bytes.Buffer, string, string, error) {
	m.lastChart, m.lastFormat = chart, format
	return m.result()
}

// ── Mock Pinger ──

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withAuth stands in for the JWT middleware
func withAuth(c *gin.Context) {
	c.Set(middleware.ContextUserID, "test-user-id")
	c.Set(middleware.ContextEmail, "ana@example.com")
	c.Set(middleware.ContextTokenID, "test-jti")
	c.Set(middleware.ContextExpiresAt, time.Now().Add(15*time.Minute))
	c.Next()
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name     string
		body     io.Reader
		err      error
		wantHTTP int
		wantCode int
	}{
		{"success", jsonBody(dto.LoginRequest{Email: "ana@example.com", Password: "x"}), nil, http.StatusOK, response.CodeOK},
		{"bad json", strings.NewReader("not json"), nil, http.StatusBadRequest, response.CodeBadRequest},
		{"bad email", jsonBody(dto.LoginRequest{Email: "ana", Password: "x"}), nil, http.StatusBadRequest, response.CodeBadRequest},
		{"invalid credentials", jsonBody(dto.LoginRequest{Email: "ana@example.com", Password: "x"}), service.ErrInvalidCredentials, http.StatusUnauthorized, response.CodeUnauthorized},
		{"rate limited", jsonBody(dto.LoginRequest{Email: "ana@example.com", Password: "x"}), service.ErrTooManyAttempts, http.StatusTooManyRequests, response.CodeTooManyRequests},
		{"provider down", jsonBody(dto.LoginRequest{Email: "ana@example.com", Password: "x"}), errors.New("dial tcp"), http.StatusBadGateway, response.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}, loginErr: tt.err}
			r := gin.New()
			r.POST("/auth/login", NewAuthHandler(mock).Login)

			w := serve(r, http.MethodPost, "/auth/login", tt.body)
			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(t, w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	mock := &mockAuthService{refreshErr: service.ErrInvalidToken}
	r := gin.New()
	r.POST("/auth/refresh", NewAuthHandler(mock).RefreshToken)

	w := serve(r, http.MethodPost, "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "old"}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	w = serve(r, http.MethodPost, "/auth/refresh", jsonBody(map[string]string{}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing token: expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)
	r := gin.New()
	r.POST("/auth/logout", withAuth, h.Logout)
	r.GET("/auth/me", withAuth, h.GetCurrentUser)
	r.GET("/anon/me", h.GetCurrentUser)

	w := serve(r, http.MethodPost, "/auth/logout", nil)
	if w.Code != http.StatusOK || mock.logoutJTI != "test-jti" {
		t.Errorf("logout: status %d, jti %q", w.Code, mock.logoutJTI)
	}

	w = serve(r, http.MethodGet, "/auth/me", nil)
	if !strings.Contains(w.Body.String(), `"email":"ana@example.com"`) {
		t.Errorf("me body = %s", w.Body.String())
	}

	w = serve(r, http.MethodGet, "/anon/me", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without auth context: expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DatasetHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDatasetHandler_Refresh(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"success", nil, http.StatusOK, response.CodeOK},
		{"in progress", recordstore.ErrLoadInProgress, http.StatusConflict, response.CodeLoadInProgress},
		{"fetch failure", fmt.Errorf("%w: ocorrencias_ponto: timeout", recordstore.ErrFetch), http.StatusBadGateway, response.CodeFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockDatasetService{status: &dto.DatasetStatusResponse{Loaded: true, Records: 3}, refreshErr: tt.err}
			r := gin.New()
			r.POST("/dataset/refresh", NewDatasetHandler(mock).Refresh)

			w := serve(r, http.MethodPost, "/dataset/refresh", nil)
			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(t, w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

func newDashboardRouter(mock *mockDashboardService) *gin.Engine {
	h := NewDashboardHandler(mock)
	r := gin.New()
	r.Use(withAuth)
	r.PUT("/filters/date-range", h.UpdateDateRange)
	r.PUT("/filters/specials", h.UpdateSpecials)
	r.GET("/filters/options", h.FilterOptions)
	r.GET("/occurrences", h.ListOccurrences)
	r.GET("/charts/status", h.StatusChart)
	return r
}

func TestDashboardHandler_UpdateDateRange(t *testing.T) {
	mock := &mockDashboardService{state: &dto.FilterStateResponse{}}
	r := newDashboardRouter(mock)

	w := serve(r, http.MethodPut, "/filters/date-range", strings.NewReader(`{"start":"2024-01-01"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastRange.Start == nil || *mock.lastRange.Start != "2024-01-01" || mock.lastRange.End != nil {
		t.Errorf("request = %+v", mock.lastRange)
	}

	w = serve(r, http.MethodPut, "/filters/date-range", strings.NewReader(`{"start":"01/01/2024"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed date: expected 400, got %d", w.Code)
	}
}

func TestDashboardHandler_UpdateSpecials_RejectsUnknownCategory(t *testing.T) {
	r := newDashboardRouter(&mockDashboardService{state: &dto.FilterStateResponse{}})

	w := serve(r, http.MethodPut, "/filters/specials", strings.NewReader(`{"categories":["debito_bh"]}`))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	w = serve(r, http.MethodPut, "/filters/specials", strings.NewReader(`{"categories":["ferias"]}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDashboardHandler_ListOccurrences(t *testing.T) {
	mock := &mockDashboardService{page: &dto.OccurrencePage{Page: 2, PageSize: 25, Total: 30, TotalPages: 2}}
	r := newDashboardRouter(mock)

	w := serve(r, http.MethodGet, "/occurrences?page=2&sort=nome&direction=desc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastList.Page != 2 || mock.lastList.Sort != "nome" || mock.lastList.Direction != "desc" {
		t.Errorf("request = %+v", mock.lastList)
	}

	w = serve(r, http.MethodGet, "/occurrences?page=-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative page: expected 400, got %d", w.Code)
	}

	mock.listErr = service.ErrInvalidSortKey
	w = serve(r, http.MethodGet, "/occurrences?sort=salario", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown sort: expected 400, got %d", w.Code)
	}
}

func TestDashboardHandler_NoData(t *testing.T) {
	mock := &mockDashboardService{chartErr: recordstore.ErrNoData, stateErr: recordstore.ErrNoData}
	r := newDashboardRouter(mock)

	for _, path := range []string{"/charts/status", "/filters/options"} {
		w := serve(r, http.MethodGet, path, nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, w.Code)
		}
		if resp := parseResponse(t, w); resp.Code != response.CodeNoData {
			t.Errorf("%s: expected code %d, got %d", path, response.CodeNoData, resp.Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Download(t *testing.T) {
	mock := &mockExportService{
		buf:         bytes.NewBufferString(`"a"`),
		filename:    "ocorrencias_ponto_2024-05-01_09-30-00.csv",
		contentType: export.ContentTypeCSV,
	}
	h := NewExportHandler(mock)
	r := gin.New()
	r.Use(withAuth)
	r.GET("/export/occurrences.csv", h.OccurrencesCSV)

	w := serve(r, http.MethodGet, "/export/occurrences.csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename*=UTF-8''ocorrencias_ponto_2024-05-01_09-30-00.csv" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != export.ContentTypeCSV {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != `"a"` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestExportHandler_Chart(t *testing.T) {
	mock := &mockExportService{buf: new(bytes.Buffer), filename: "x.xlsx", contentType: export.ContentTypeXLSX}
	h := NewExportHandler(mock)
	r := gin.New()
	r.Use(withAuth)
	r.GET("/export/charts/:chart", h.Chart)

	w := serve(r, http.MethodGet, "/export/charts/ocorrencias_por_situacao?format=xlsx", nil)
	if w.Code != http.StatusOK || mock.lastChart != export.ChartStatus || mock.lastFormat != "xlsx" {
		t.Errorf("status %d, chart %q, format %q", w.Code, mock.lastChart, mock.lastFormat)
	}

	w = serve(r, http.MethodGet, "/export/charts/ocorrencias_por_situacao?format=pdf", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad format: expected 400, got %d", w.Code)
	}

	mock.err = service.ErrUnknownChart
	w = serve(r, http.MethodGet, "/export/charts/pizza", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown chart: expected 404, got %d", w.Code)
	}
}

func TestExportHandler_Empty(t *testing.T) {
	mock := &mockExportService{err: export.ErrExportEmpty}
	h := NewExportHandler(mock)
	r := gin.New()
	r.Use(withAuth)
	r.GET("/export/table.xlsx", h.Table)

	w := serve(r, http.MethodGet, "/export/table.xlsx", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != response.CodeExportEmpty {
		t.Errorf("expected code %d, got %d", response.CodeExportEmpty, resp.Code)
	}
	if w.Header().Get("Content-Disposition") != "" {
		t.Error("no file must be sent")
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name      string
		loaded    bool
		redis     Pinger
		wantHTTP  int
		wantRedis string
	}{
		{"loading without redis", false, nil, http.StatusServiceUnavailable, "disabled"},
		{"ready", true, mockPinger{}, http.StatusOK, "ok"},
		{"redis down", true, mockPinger{err: errors.New("down")}, http.StatusOK, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&mockDatasetService{status: &dto.DatasetStatusResponse{Loaded: tt.loaded}}, tt.redis)
			r := gin.New()
			r.GET("/health", h.Health)

			w := serve(r, http.MethodGet, "/health", nil)
			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			var body dto.HealthResponse
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body.Redis != tt.wantRedis {
				t.Errorf("redis = %q, want %q", body.Redis, tt.wantRedis)
			}
		})
	}
}
