package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{"error with details", &APIError{Code: 400, Message: "Bad Request", Details: "Invalid JSON format"}, "Bad Request: Invalid JSON format"},
		{"error without details", &APIError{Code: 404, Message: "Not Found"}, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("Handle", "shop")
	assert.Equal(t, http.StatusNotFound, err.Code)
	assert.Equal(t, "Handle not found", err.Message)
	assert.Equal(t, "shop", err.Context["id"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errUtils.Newf(errUtils.ErrNotFound, "no handle [x]"), http.StatusNotFound},
		{"usage", errUtils.Usagef("bad descriptor"), http.StatusBadRequest},
		{"not registered", errUtils.Newf(errUtils.ErrNotRegistered, "no container"), http.StatusBadRequest},
		{"capability", errUtils.Capabilityf("remote cannot start"), http.StatusUnprocessableEntity},
		{"invalid property", errUtils.Newf(errUtils.ErrInvalidProperty, "bad port"), http.StatusUnprocessableEntity},
		{"port in use", errUtils.Newf(errUtils.ErrPortInUse, "8080 busy"), http.StatusConflict},
		{"timeout", errUtils.Newf(errUtils.ErrTimeout, "no answer"), http.StatusGatewayTimeout},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.want, apiErr.Code)
			assert.Equal(t, tt.err.Error(), apiErr.Details)
		})
	}
}

func TestFromError_Hints(t *testing.T) {
	err := errUtils.Build(errUtils.Usagef("workspace locked")).WithHint("stop the other daemon").Err()
	assert.Equal(t, []string{"stop the other daemon"}, FromError(err).Hints)
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "insufficient permissions"), http.StatusForbidden, "Forbidden"},
		{"api error", BadRequestError("Invalid handle id", "bad"), http.StatusBadRequest, "Invalid handle id"},
		{"domain error", errUtils.Newf(errUtils.ErrTimeout, "slow"), http.StatusGatewayTimeout, "Container did not respond in time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantErr     bool
	}{
		{"POST with application/json", http.MethodPost, "application/json", `{"autostart":true}`, false},
		{"POST with text/plain", http.MethodPost, "text/plain", "descriptor", true},
		{"GET request skips validation", http.MethodGet, "text/html", "", false},
		{"POST with empty body", http.MethodPost, "", "", false},
		{"PUT with charset", http.MethodPut, "application/json; charset=utf-8", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := ValidateContentType(func(c echo.Context) error {
				return c.String(http.StatusOK, "OK")
			})(c)

			if tt.wantErr {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHandleParam(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"shop", false},
		{"shop-1.prod_eu", false},
		{"../etc", true},
		{".hidden", true},
		{strings.Repeat("a", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			err := ValidateHandleParam(func(c echo.Context) error { return nil })(c)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, SecurityHeaders(func(c echo.Context) error { return nil })(c))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
