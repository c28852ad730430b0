package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serveReadiness(t *testing.T, checks ...Check) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := ReadinessHandler(checks...)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func okCheck(name string) Check {
	return Check{Name: name, Ping: func(context.Context) error { return nil }}
}

func TestReadiness_AllHealthy(t *testing.T) {
	code, body := serveReadiness(t, okCheck("database"), okCheck("redis"))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != "ready" {
		t.Errorf("expected ready, got %v", body["status"])
	}
	checks := body["checks"].(map[string]interface{})
	if checks["database"] != "ok" || checks["redis"] != "ok" {
		t.Errorf("unexpected checks: %v", checks)
	}
}

func TestReadiness_OneFailing(t *testing.T) {
	failing := Check{Name: "redis", Ping: func(context.Context) error {
		return errors.New("dial tcp 10.0.0.5:6379: connection refused")
	}}
	code, body := serveReadiness(t, okCheck("database"), failing)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	checks := body["checks"].(map[string]interface{})
	if checks["redis"] != "unavailable" || checks["database"] != "ok" {
		t.Errorf("unexpected checks: %v", checks)
	}
}

func TestReadiness_NoChecks(t *testing.T) {
	code, body := serveReadiness(t)
	if code != http.StatusOK || body["status"] != "ready" {
		t.Errorf("expected ready with no dependencies, got %d %v", code, body)
	}
}
