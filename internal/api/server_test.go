package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/kerntune/internal/logger"
	"github.com/samcharles93/kerntune/internal/results"
	"github.com/samcharles93/kerntune/internal/tunable"
)

func newTestEcho(t *testing.T) (*echo.Echo, *results.Manager) {
	t.Helper()
	manager := results.NewManager(logger.Discard())
	manager.Add("gemm_f32", "gemm_f32_64x64x64",
		tunable.Measured("tiled", 125*time.Microsecond))
	server := NewServer(manager, results.NewValidator())
	e := echo.New()
	server.Register(e)
	return e, manager
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d body=%s", rec.Code, rec.Body.String())
	}

	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.SessionID == "" {
		t.Fatalf("expected session id")
	}
	if status.Entries != 1 {
		t.Fatalf("expected 1 entry, got %d", status.Entries)
	}
	if status.Validator["go_os"] == "" {
		t.Fatalf("expected validator keys, got %v", status.Validator)
	}
}

func TestResults(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/results")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "gemm_f32_64x64x64") {
		t.Fatalf("expected params signature in body, got: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"tiled"`) {
		t.Fatalf("expected candidate name in body, got: %s", rec.Body.String())
	}
}

func TestOpResults(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/results/gemm_f32")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"measured"`) {
		t.Fatalf("expected measured kind in body, got: %s", rec.Body.String())
	}
}

func TestOpResultsNotFound(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/results/unknown_op")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not_found_error") {
		t.Fatalf("expected not_found_error in body, got: %s", rec.Body.String())
	}
}
