package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Room"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db down")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Kafka"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "room not found"},
			expected: "NOT_FOUND: room not found",
		},
		{
			name:     "with underlying error",
			appErr:   &AppError{Code: CodeInternal, Message: "internal error", Err: errors.New("connection reset")},
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	sentinel := errors.New("slot taken")
	wrapped := Wrap(sentinel, CodeConflict, "conflict", http.StatusConflict)

	if !errors.Is(wrapped, sentinel) {
		t.Errorf("errors.Is should find the wrapped sentinel")
	}
}

func TestStatusCode_DefaultsToInternal(t *testing.T) {
	err := &AppError{Code: "SOMETHING"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want 500", err.StatusCode())
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Room", "abc")

	if err.Details["id"] != "abc" || err.Details["resource"] != "Room" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if err.Message != "Room not found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("User")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return the same AppError")
	}

	wrapped := fmt.Errorf("lookup: %w", appErr)
	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError() should unwrap to the inner AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through fmt.Errorf wrapping")
	}

	regular := errors.New("regular error")
	result := AsAppError(regular)
	if result.Code != CodeInternal || result.Err != regular {
		t.Errorf("AsAppError() should wrap regular error as internal, got %+v", result)
	}
	if IsAppError(regular) {
		t.Errorf("IsAppError() should be false for a plain error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("x"))
	if !HasCode(err, CodeConflict) {
		t.Errorf("HasCode() should match CONFLICT")
	}
	if HasCode(err, CodeNotFound) {
		t.Errorf("HasCode() should not match NOT_FOUND")
	}
}

func TestAppError_ToJSON_HidesCause(t *testing.T) {
	err := Internal("Failed to save booking", errors.New("E11000 duplicate key error collection: park.Room_bookings"))
	body := string(err.ToJSON())

	if !strings.Contains(body, CodeInternal) {
		t.Errorf("ToJSON() should contain the code, got %s", body)
	}
	if strings.Contains(body, "E11000") {
		t.Errorf("ToJSON() leaked the driver error: %s", body)
	}
}
