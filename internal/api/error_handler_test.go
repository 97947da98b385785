package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &domain.ValidationError{Fields: map[string]string{"email": "email is required"}}, http.StatusUnprocessableEntity},
		{"remote validation", fmt.Errorf("register: %w", &domain.ValidationError{Message: "Email already taken"}), http.StatusUnprocessableEntity},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not authenticated", fmt.Errorf("content:view: %w", domain.ErrNotAuthenticated), http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("content:edit: %w", domain.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("get content 9: %w", domain.ErrContentNotFound), http.StatusNotFound},
		{"in progress", domain.ErrOperationInProgress, http.StatusConflict},
		{"superseded", domain.ErrSuperseded, http.StatusConflict},
		{"unreachable", errors.Join(domain.ErrUnreachable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"malformed", domain.ErrMalformedResponse, http.StatusBadGateway},
		{"echo", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}

func TestHTTPErrorHandler_FieldsAndMessages(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	rec := httptest.NewRecorder()
	handler(&domain.ValidationError{Fields: map[string]string{"confirmPassword": "passwords do not match"}},
		e.NewContext(httptest.NewRequest(http.MethodPost, "/register", nil), rec))
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Fields["confirmPassword"] != "passwords do not match" {
		t.Fatalf("unexpected fields: %+v", body.Fields)
	}

	rec = httptest.NewRecorder()
	handler(errors.New("secret internal detail"), e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "internal server error" {
		t.Fatalf("internal detail leaked: %q", body.Error)
	}
}
