package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/pkg/pagination"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorBody) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)
	c.Set(RequestIDKey, "req-42")

	ErrorHandler(zerolog.Nop())(err, c)

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestErrorHandler_Operational(t *testing.T) {
	err := fmt.Errorf("service: %w", apperror.NotFound(nil, "Patient abc not found", map[string]string{"patientId": "abc"}))
	rec, body := renderError(t, err)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if body.Code != 404 || body.ErrorCode != apperror.CodeNotFound {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Message != "Patient abc not found" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.RequestID != "req-42" {
		t.Errorf("expected request id, got %q", body.RequestID)
	}
	details, ok := body.Details.(map[string]interface{})
	if !ok || details["patientId"] != "abc" {
		t.Errorf("expected details to be disclosed, got %v", body.Details)
	}
}

func TestErrorHandler_NonOperationalHidesDetail(t *testing.T) {
	rec, body := renderError(t, errors.New("pq: connection refused at 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body.ErrorCode != apperror.CodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", body.ErrorCode)
	}
	if body.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", body.Message)
	}
	if body.Details != nil {
		t.Errorf("expected no details, got %v", body.Details)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, body := renderError(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	if rec.Code != http.StatusMethodNotAllowed || body.ErrorCode != apperror.CodeBadRequest {
		t.Errorf("unexpected response %d %+v", rec.Code, body)
	}

	rec, body = renderError(t, echo.ErrNotFound)
	if rec.Code != http.StatusNotFound || body.ErrorCode != apperror.CodeNotFound {
		t.Errorf("unexpected response %d %+v", rec.Code, body)
	}

	rec, body = renderError(t, echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"))
	if rec.Code != http.StatusTooManyRequests || body.ErrorCode != apperror.CodeTooManyRequests {
		t.Errorf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestErrorHandler_PaginationError(t *testing.T) {
	_, err := pagination.Parse("1", "500")
	rec, body := renderError(t, err)

	if rec.Code != http.StatusBadRequest || body.ErrorCode != apperror.CodeValidation {
		t.Errorf("unexpected response %d %+v", rec.Code, body)
	}
	details, ok := body.Details.([]interface{})
	if !ok || len(details) != 1 {
		t.Fatalf("expected one violation, got %v", body.Details)
	}
	if details[0].(map[string]interface{})["field"] != "limit" {
		t.Errorf("expected limit violation, got %v", details[0])
	}
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)
	c.String(http.StatusOK, "already sent")

	ErrorHandler(zerolog.Nop())(errors.New("late"), c)
	if rec.Body.String() != "already sent" {
		t.Errorf("expected body untouched, got %q", rec.Body.String())
	}
}
