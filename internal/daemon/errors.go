package daemon

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Hints   []string               `json:"hints,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewAPIError creates a new API error.
func NewAPIError(code int, message string, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// BadRequestError reports a malformed request.
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, details)
}

// NotFoundError reports an unknown resource.
func NotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]interface{}{"id": id},
	}
}

// FromError maps a cargo error onto an API error using its sentinel.
func FromError(err error) *APIError {
	code := http.StatusInternalServerError
	message := "Container operation failed"

	switch {
	case errUtils.Is(err, errUtils.ErrNotFound):
		code, message = http.StatusNotFound, "Resource not found"
	case errUtils.Is(err, errUtils.ErrUsage), errUtils.Is(err, errUtils.ErrNotRegistered):
		code, message = http.StatusBadRequest, "Bad request"
	case errUtils.Is(err, errUtils.ErrCapability), errUtils.Is(err, errUtils.ErrInvalidProperty):
		code, message = http.StatusUnprocessableEntity, "Unsupported configuration"
	case errUtils.Is(err, errUtils.ErrPortInUse):
		code, message = http.StatusConflict, "Port in use"
	case errUtils.Is(err, errUtils.ErrTimeout):
		code, message = http.StatusGatewayTimeout, "Container did not respond in time"
	}

	return &APIError{
		Code:    code,
		Message: message,
		Details: err.Error(),
		Hints:   errUtils.Hints(err),
	}
}

// HTTPErrorHandler is a custom error handler for Echo.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	if he, ok := err.(*echo.HTTPError); ok {
		apiErr = &APIError{
			Code:    he.Code,
			Message: getHTTPMessage(he.Code),
			Details: fmt.Sprintf("%v", he.Message),
		}
	} else if ae, ok := err.(*APIError); ok {
		apiErr = ae
	} else {
		apiErr = FromError(err)
	}

	if err := c.JSON(apiErr.Code, apiErr); err != nil {
		c.Logger().Error(err)
	}
}

// getHTTPMessage returns a user-friendly message for HTTP status codes.
func getHTTPMessage(code int) string {
	messages := map[int]string{
		http.StatusBadRequest:          "Bad request",
		http.StatusUnauthorized:        "Unauthorized",
		http.StatusForbidden:           "Forbidden",
		http.StatusNotFound:            "Resource not found",
		http.StatusMethodNotAllowed:    "Method not allowed",
		http.StatusConflict:            "Conflict",
		http.StatusUnprocessableEntity: "Unprocessable entity",
		http.StatusTooManyRequests:     "Too many requests",
		http.StatusInternalServerError: "Internal server error",
		http.StatusServiceUnavailable:  "Service unavailable",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}

// ValidateContentType middleware ensures that requests with a body are JSON.
func ValidateContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		method := c.Request().Method
		if method == http.MethodPost || method == http.MethodPut {
			if c.Request().ContentLength == 0 {
				return next(c)
			}
			contentType := c.Request().Header.Get(echo.HeaderContentType)
			if !strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
				return BadRequestError(
					"Invalid Content-Type",
					"Content-Type must be 'application/json'. Got: "+contentType,
				)
			}
		}
		return next(c)
	}
}

// ValidateHandleParam middleware rejects handle ids unsafe as directory names.
func ValidateHandleParam(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Param("id"); id != "" {
			if err := ValidateHandleID(id); err != nil {
				return BadRequestError("Invalid handle id", err.Error())
			}
		}
		return next(c)
	}
}

// SecurityHeaders adds the usual hardening headers.
func SecurityHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("X-Content-Type-Options", "nosniff")
		c.Response().Header().Set("X-Frame-Options", "DENY")
		c.Response().Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return next(c)
	}
}
