// Package httpkit provides HTTP response utilities and middleware.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"autoshop_backend/platform/apperr"
	"autoshop_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	MsgInvalidRequest   = "invalid request"
	MsgValidationFailed = "validation failed"
	msgInternal         = "internal server error"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// NoContent sends a 204 with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ValidationError sends a 400 listing the failed fields.
func ValidationError(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, MsgValidationFailed, validator.Details(err))
}

// BindJSON binds and validates a JSON body into req. It writes the error
// response itself and returns false when the request must stop.
func BindJSON(c *gin.Context, val *validator.Validator, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		Error(c, http.StatusBadRequest, MsgInvalidRequest, err.Error())
		return false
	}
	if err := val.Struct(req); err != nil {
		ValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters into req.
func BindQuery(c *gin.Context, val *validator.Validator, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		Error(c, http.StatusBadRequest, MsgInvalidRequest, err.Error())
		return false
	}
	if err := val.Struct(req); err != nil {
		ValidationError(c, err)
		return false
	}
	return true
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind for the status code. Anything
// else is an unexpected failure: it is attached to the gin context for the
// request logger and answered with a generic 500.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		if domainErr.Kind == apperr.KindInternal {
			_ = c.Error(err)
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	return true
}
