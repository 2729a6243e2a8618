package handlers

import (
	"context"
	"errors"
	"net/http"

	"parking/internal/domain"
	"parking/internal/http/middleware"
	"parking/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		var verr domain.ValidationError
		errors.As(err, &verr)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"field": verr.Field})
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsStoreUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		utils.LogEvent(middleware.GetRequestID(c), "http", "store_unavailable", err.Error())
		respondError(c, http.StatusServiceUnavailable, "store_unavailable", "the data store is not reachable, try again", nil)
	case domain.IsInternal(err):
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
