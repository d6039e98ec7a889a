package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	processingdomain "github.com/docbrief/docbrief/internal/processing/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Current *int64            `json:"current,omitempty"`
	Limit   *int64            `json:"limit,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var denial *processingdomain.DenialError
	if errors.As(err, &denial) {
		return http.StatusForbidden, denialPayload(denial.Decision)
	}

	var upstream *processingdomain.UpstreamError
	if errors.As(err, &upstream) {
		return upstreamStatus(upstream.Reason), errorPayload{
			Type:    "upstream_error",
			Message: "summarization provider failed",
			Reason:  upstream.Reason,
		}
	}

	var unsupported *extractdomain.UnsupportedFormatError
	if errors.As(err, &unsupported) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unsupported_document",
			Message: fmt.Sprintf("unsupported document format %q", unsupported.Format),
		}
	}

	var extraction *extractdomain.ExtractionError
	if errors.As(err, &extraction) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unreadable_document",
			Message: "the document could not be read",
		}
	}

	var badExport *exportdomain.UnsupportedExportError
	if errors.As(err, &badExport) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "format", Code: "unsupported_format", Message: badExport.Error()},
			},
		}
	}

	switch {
	case errors.Is(err, processingdomain.ErrNoExtractableText):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "empty_document",
			Message: "the document contains no extractable text",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests, slow down",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, summarydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "request", Code: "invalid_request", Message: "invalid request"},
			},
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func denialPayload(d entitlementdomain.Decision) errorPayload {
	current, limit := d.Current, d.Limit
	payload := errorPayload{
		Type:    "entitlement_denied",
		Reason:  string(d.Reason),
		Current: &current,
		Limit:   &limit,
	}

	switch d.Reason {
	case entitlementdomain.ReasonDocumentLimit:
		payload.Message = fmt.Sprintf("monthly document limit reached (%d of %d used)", current, limit)
	case entitlementdomain.ReasonPageLimit:
		payload.Message = fmt.Sprintf("monthly page limit reached (%d of %d used)", current, limit)
	case entitlementdomain.ReasonDocumentTooLarge:
		payload.Message = fmt.Sprintf("document is %d pages, guest uploads allow at most %d", current, limit)
	default:
		payload.Message = "request denied"
	}

	return payload
}

func upstreamStatus(reason string) int {
	switch reason {
	case "quota_exceeded", "rate_limited":
		return http.StatusServiceUnavailable
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError && payload.Type == "internal_error" {
		return "internal_error", ""
	}
	if payload.Reason != "" {
		return payload.Type, payload.Reason
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, ""
}
