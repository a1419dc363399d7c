package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes returned in the "code" field of failed responses.
const (
	CodeDailyLimit       = "DAILY_LIMIT"
	CodeGlobalLimit      = "GLOBAL_LIMIT"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidSession   = "INVALID_SESSION"
	CodeNotLoggedIn      = "NOT_LOGGED_IN"
	CodeNoTopic          = "NO_TOPIC"
	CodeUnknownTopic     = "UNKNOWN_TOPIC"
	CodeSessionClosed    = "SESSION_CLOSED"
	CodeTutorUnavailable = "TUTOR_UNAVAILABLE"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// success sends a 200 JSON response. The body always includes
// "error": false alongside data's keys.
func success(c echo.Context, data map[string]any) error {
	resp := make(map[string]any, len(data)+1)
	resp["error"] = false
	for k, v := range data {
		resp[k] = v
	}
	return c.JSON(http.StatusOK, resp)
}

// failure sends an error JSON response carrying a machine-readable code.
func failure(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]any{
		"error":   true,
		"code":    code,
		"message": message,
	})
}
