package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/config"
	"github.com/oncology/clinic/internal/platform/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                   "0",
		Env:                    "test",
		StorageDriver:          config.StorageDriverMemory,
		CacheDriver:            config.CacheDriverMemory,
		CacheTTLSeconds:        60,
		EventsDriver:           config.EventsDriverLog,
		CORSOrigins:            []string{"http://localhost:3000"},
		RateLimitRPS:           1000,
		RateLimitBurst:         1000,
		BodyLimit:              "1M",
		ShutdownTimeoutSeconds: 1,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { a.shutdown(context.Background()) })
	return a
}

func do(a *app, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return resp.Data
}

func TestApp_ClinicalRecordLifecycle(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := do(a, http.MethodPost, "/patients",
		`{"firstName":"John","lastName":"Doe","birthDate":"1990-01-01","gender":"MASCULINO"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create patient: %d %s", rec.Code, rec.Body.String())
	}
	patientID := decodeData(t, rec)["id"].(string)

	rec = do(a, http.MethodPost, "/tumor-types", `{"name":"Carcinoma","systemAffected":"Respiratorio"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tumor type: %d %s", rec.Code, rec.Body.String())
	}
	tumorTypeID := int(decodeData(t, rec)["id"].(float64))

	rec = do(a, http.MethodPost, "/clinical-records", `{"patientId":"`+patientID+`","tumorTypeId":`+
		strconv.Itoa(tumorTypeID)+`,"diagnosisDate":"2024-03-01","stage":"I","treatmentProtocol":"Cirugia"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create record: %d %s", rec.Code, rec.Body.String())
	}
	recordID := decodeData(t, rec)["id"].(string)

	rec = do(a, http.MethodPut, "/clinical-records/"+recordID, `{"stage":"III"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update record: %d %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["stage"] != "III" || data["treatmentProtocol"] != "Cirugia" || data["diagnosisDate"] != "2024-03-01" {
		t.Errorf("unexpected record after update: %v", data)
	}

	rec = do(a, http.MethodGet, "/patients/"+patientID+"/clinical-records", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"stage":"III"`) {
		t.Errorf("patient records: %d %s", rec.Code, rec.Body.String())
	}

	if rec = do(a, http.MethodDelete, "/patients/"+patientID, ""); rec.Code != http.StatusOK {
		t.Fatalf("disable patient: %d", rec.Code)
	}
	rec = do(a, http.MethodPost, "/clinical-records", `{"patientId":"`+patientID+`","tumorTypeId":`+
		strconv.Itoa(tumorTypeID)+`,"diagnosisDate":"2024-04-01","stage":"II","treatmentProtocol":"Radioterapia"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for inactive patient, got %d", rec.Code)
	}
}

func TestApp_ErrorBody(t *testing.T) {
	a := newTestApp(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/tumor-types/99", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body middleware.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != http.StatusNotFound || body.ErrorCode != "NOT_FOUND" || body.RequestID != "req-123" {
		t.Errorf("unexpected error body %+v", body)
	}
	if body.Message != "Tumor Type 99 not found" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestApp_UnknownRoute(t *testing.T) {
	a := newTestApp(t, testConfig())
	rec := do(a, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"errorCode":"NOT_FOUND"`) {
		t.Errorf("expected taxonomy error body, got %s", rec.Body.String())
	}
}

func TestApp_PaginationBounds(t *testing.T) {
	a := newTestApp(t, testConfig())
	rec := do(a, http.MethodGet, "/patients?limit=101", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"errorCode":"VALIDATION_ERROR"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t, testConfig())
	if rec := do(a, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := do(a, http.MethodGet, "/health/db", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected /health/db to be absent with memory storage, got %d", rec.Code)
	}
	if rec := do(a, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("expected ready with no external dependencies, got %d", rec.Code)
	}
}

func TestApp_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	a := newTestApp(t, cfg)

	do(a, http.MethodGet, "/health", "")
	rec := do(a, http.MethodGet, "/health", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"errorCode":"TOO_MANY_REQUESTS"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestApp_RedisBackedReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.CacheDriver = config.CacheDriverRedis
	cfg.EventsDriver = config.EventsDriverRedis
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	cfg.EventsStream = "clinic-events"
	cfg.EventsMaxLen = 100
	a := newTestApp(t, cfg)

	rec := do(a, http.MethodPost, "/patients",
		`{"firstName":"Ana","lastName":"Ruiz","birthDate":"1985-04-12","gender":"FEMENINO"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	n, err := a.redis.XLen(context.Background(), "clinic-events").Result()
	if err != nil || n != 1 {
		t.Fatalf("expected one event on the stream, got %d (%v)", n, err)
	}

	if rec := do(a, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d: %s", rec.Code, rec.Body.String())
	}
	mr.Close()
	rec = do(a, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 once redis is gone, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"unavailable"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.CacheDriver = config.CacheDriverRedis
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := newApp(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestApp_OpenAPIDocument(t *testing.T) {
	a := newTestApp(t, testConfig())
	rec := do(a, http.MethodGet, "/openapi.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Paths map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range []string{"/patients", "/tumor-types/{id}", "/clinical-records", "/patients/{id}/clinical-records"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
}
