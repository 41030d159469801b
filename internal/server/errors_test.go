package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	orderdomain "github.com/smallbiznis/menuboard/internal/order/domain"
	syncdomain "github.com/smallbiznis/menuboard/internal/sync/domain"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", menuitemdomain.ErrInvalidPrice, http.StatusBadRequest, "validation_error"},
		{"empty order", orderdomain.ErrEmptyOrder, http.StatusBadRequest, "empty_order"},
		{"duplicate", categorydomain.ErrDuplicateName, http.StatusConflict, "conflict"},
		{"missing", orderdomain.ErrLineNotFound, http.StatusNotFound, "not_found"},
		{"bad cursor", orderdomain.ErrInvalidCursor, http.StatusBadRequest, "validation_error"},
		{"sync upstream", syncdomain.ErrFetchFailed, http.StatusBadGateway, "sync_fetch_failed"},
		{"sync unconfigured", syncdomain.ErrNotConfigured, http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			if status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, status)
			}
			if payload.Type != tc.typ {
				t.Fatalf("expected type %q, got %q", tc.typ, payload.Type)
			}
		})
	}
}

func TestMapErrorHidesInternalDetail(t *testing.T) {
	_, payload := mapError(errors.New("pq: connection reset by peer"))
	if payload.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", payload.Message)
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	status, payload := mapError(orderdomain.ErrInvalidQuantity)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if len(payload.Errors) != 1 || payload.Errors[0].Field != "quantity" {
		t.Fatalf("unexpected validation detail: %+v", payload.Errors)
	}
}

func TestErrorMiddlewareWritesJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, menuitemdomain.ErrNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Type != "not_found" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestErrorMiddlewareLeavesWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		_ = c.Error(errors.New("late error after write"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("middleware rewrote a finished response: %d", rec.Code)
	}
}
