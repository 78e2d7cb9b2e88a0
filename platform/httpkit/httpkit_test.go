package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"autoshop_backend/platform/apperr"
	"autoshop_backend/platform/validator"
)

type createRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"min=0"`
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestBindJSON(t *testing.T) {
	engine := newEngine()
	val := validator.New()
	engine.POST("/items", func(c *gin.Context) {
		var req createRequest
		if !BindJSON(c, val, &req) {
			return
		}
		OK(c, req)
	})

	if rec := serve(engine, http.MethodPost, "/items", `{"name":"Oil","price":100}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec := serve(engine, http.MethodPost, "/items", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}

	rec = serve(engine, http.MethodPost, "/items", `{"price":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid body, got %d", rec.Code)
	}
	var resp struct {
		Error   string                 `json:"error"`
		Details []validator.FieldError `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != MsgValidationFailed || len(resp.Details) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Details[0].Field != "createRequest.name" {
		t.Fatalf("expected json field names, got %q", resp.Details[0].Field)
	}
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.NotFound("service not found"), http.StatusNotFound, "service not found"},
		{apperr.Conflict("slot taken"), http.StatusConflict, "slot taken"},
		{apperr.Validation("bad vat"), http.StatusBadRequest, "bad vat"},
		{errors.New("connection reset"), http.StatusInternalServerError, msgInternal},
	}

	for _, tc := range cases {
		engine := newEngine()
		engine.GET("/", func(c *gin.Context) {
			HandleError(c, tc.err)
		})
		rec := serve(engine, http.MethodGet, "/", "")
		if rec.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("%v: expected body to contain %q, got %s", tc.err, tc.body, rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "connection reset") {
			t.Errorf("internal error details leaked: %s", rec.Body.String())
		}
	}
}

func TestRequestIDAndRateLimit(t *testing.T) {
	engine := newEngine()
	engine.Use(RequestID())
	engine.Use(NewIPRateLimiter(rate.Limit(1), 1, nil).RateLimit())
	engine.GET("/", func(c *gin.Context) { NoContent(c) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	rec = serve(engine, http.MethodGet, "/", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}
}
