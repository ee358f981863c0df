package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
)

// APIResponse standard API response structure
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// Meta pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewMeta creates Meta with computed total_pages
func NewMeta(page, perPage int, total int64) *Meta {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := total / int64(perPage)
	if total%int64(perPage) > 0 {
		totalPages++
	}
	return &Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Success returns a 200 response
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// SuccessWithMeta returns a 200 response with pagination
func SuccessWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// Created returns a 201 response
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// ErrorResponse returns an error response; details are only exposed below 500
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	info := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}
	if err != nil && status < http.StatusInternalServerError {
		var verr *ValidationError
		if errors.As(err, &verr) {
			info.Details = verr
		} else {
			info.Details = err.Error()
		}
	}
	c.JSON(status, APIResponse{Success: false, Error: info})
}

// HandleError maps a service error onto the HTTP error taxonomy.
// Unexpected errors are logged and reported without internals.
func HandleError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, ErrValidationFailed):
		ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownContentType):
		ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, notFoundMsg, err)
	case errors.Is(err, ErrDuplicateSlug):
		ErrorResponse(c, http.StatusConflict, "Slug already exists, choose a different slug", err)
	case errors.Is(err, ErrNotLatestVersion), errors.Is(err, ErrVersionConflict):
		ErrorResponse(c, http.StatusConflict, "Tender version conflict", err)
	default:
		requestID, _ := c.Get("request_id")
		pkglogger.GetLogger().Error().
			Err(err).
			Interface("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		ErrorResponse(c, http.StatusInternalServerError, "Something went wrong, please try again", nil)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "ERROR"
	}
}
