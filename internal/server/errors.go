package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/menuboard/internal/analytics/domain"
	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	layoutdomain "github.com/smallbiznis/menuboard/internal/layout/domain"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	offeringsdomain "github.com/smallbiznis/menuboard/internal/offerings/domain"
	orderdomain "github.com/smallbiznis/menuboard/internal/order/domain"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
	snapshotdomain "github.com/smallbiznis/menuboard/internal/snapshot/domain"
	syncdomain "github.com/smallbiznis/menuboard/internal/sync/domain"
	"gorm.io/gorm"
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
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrServiceUnavailable = errors.New("service_unavailable")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
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

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, orderdomain.ErrEmptyOrder):
		return http.StatusBadRequest, errorPayload{
			Type:    "empty_order",
			Message: "order has no items",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, syncdomain.ErrFetchFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "sync_fetch_failed",
			Message: "sync source unavailable",
		}
	case errors.Is(err, syncdomain.ErrNotConfigured),
		errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, categorydomain.ErrInvalidName),
		errors.Is(err, categorydomain.ErrInvalidID),
		errors.Is(err, menuitemdomain.ErrInvalidName),
		errors.Is(err, menuitemdomain.ErrInvalidPrice),
		errors.Is(err, menuitemdomain.ErrInvalidCategory),
		errors.Is(err, menuitemdomain.ErrInvalidID),
		errors.Is(err, archivedomain.ErrInvalidID),
		errors.Is(err, archivedomain.ErrInvalidRange),
		errors.Is(err, snapshotdomain.ErrInvalidDate),
		errors.Is(err, layoutdomain.ErrInvalidName),
		errors.Is(err, layoutdomain.ErrInvalidPageType),
		errors.Is(err, layoutdomain.ErrInvalidLayout),
		errors.Is(err, layoutdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidSession),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidItem),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrInvalidCursor),
		errors.Is(err, offeringsdomain.ErrInvalidName),
		errors.Is(err, offeringsdomain.ErrInvalidID),
		errors.Is(err, offeringsdomain.ErrInvalidSlot),
		errors.Is(err, settingsdomain.ErrInvalidKey),
		errors.Is(err, settingsdomain.ErrInvalidValue),
		errors.Is(err, settingsdomain.ErrInvalidName),
		errors.Is(err, settingsdomain.ErrInvalidID),
		errors.Is(err, analyticsdomain.ErrInvalidDisplayType),
		errors.Is(err, analyticsdomain.ErrInvalidID),
		errors.Is(err, analyticsdomain.ErrInvalidDate):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, categorydomain.ErrDuplicateName),
		errors.Is(err, menuitemdomain.ErrDuplicateName),
		errors.Is(err, offeringsdomain.ErrDuplicateMeal):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, menuitemdomain.ErrNotFound),
		errors.Is(err, snapshotdomain.ErrNotFound),
		errors.Is(err, layoutdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrLineNotFound),
		errors.Is(err, offeringsdomain.ErrNotFound),
		errors.Is(err, settingsdomain.ErrNotFound),
		errors.Is(err, analyticsdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
