package testutil

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	apperrors "orbit/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorResponse checks that rec carries the JSON error envelope written
// by middleware.WriteError with the given status and code.
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}

	var body struct {
		Error *apperrors.AppError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error envelope: %v\nbody: %s", err, rec.Body.String())
	}
	if body.Error == nil {
		t.Fatalf("expected an error object, got %s", rec.Body.String())
	}
	if body.Error.Code != code {
		t.Errorf("expected error code %q, got %q", code, body.Error.Code)
	}
	if body.Error.Message == "" {
		t.Errorf("expected a message with code %q", code)
	}
}
