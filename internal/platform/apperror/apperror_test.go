package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errSentinel = errors.New("sentinel")

func TestNotFound_WrapsCause(t *testing.T) {
	err := NotFound(errSentinel, "Patient 1 not found", map[string]string{"patientId": "1"})
	if err.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.Status)
	}
	if err.Code != CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if !err.Operational {
		t.Error("expected operational error")
	}
	if !errors.Is(err, errSentinel) {
		t.Error("expected errors.Is to match the cause")
	}
	if err.Error() != "Patient 1 not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestNew_DefaultMessage(t *testing.T) {
	err := BadRequest(nil, "", nil)
	if err.Message != "Bad request" {
		t.Errorf("expected default message, got %q", err.Message)
	}
}

func TestInternal_IsNotOperational(t *testing.T) {
	err := Internal(fmt.Errorf("pool exhausted"))
	if err.Operational {
		t.Error("internal errors must not be operational")
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.Status)
	}
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Validation("bad input", nil))
	got := From(wrapped)
	if got.Code != CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %s", got.Code)
	}

	plain := From(errors.New("boom"))
	if plain.Code != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR for unknown error, got %s", plain.Code)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Code
	}{
		{http.StatusNotFound, CodeNotFound},
		{http.StatusMethodNotAllowed, CodeBadRequest},
		{http.StatusRequestEntityTooLarge, CodeBadRequest},
		{http.StatusConflict, CodeConflict},
		{http.StatusTooManyRequests, CodeTooManyRequests},
		{http.StatusServiceUnavailable, CodeInternal},
	}
	for _, tt := range tests {
		if got := FromStatus(tt.status); got != tt.want {
			t.Errorf("FromStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
