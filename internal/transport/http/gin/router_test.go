package httpgin

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingresso-go/internal/repository"
	"ingresso-go/internal/service"
	"ingresso-go/internal/service/checkin"
	"ingresso-go/internal/service/events"
	"ingresso-go/internal/service/query"
	"ingresso-go/internal/service/sales"
	"ingresso-go/internal/state"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs := service.NewServices(nil, nil, nil, state.NewMirror(), service.Config{})
	return NewRouter(svcs, nil, nil, RouterConfig{QRSecret: "test-secret"}, logger)
}

func doReq(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := doReq(t, r, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestIDEchoed(t *testing.T) {
	r := newTestRouter(t)

	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestInvalidUUIDParams(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/events/not-a-uuid"},
		{http.MethodDelete, "/events/not-a-uuid"},
		{http.MethodGet, "/events/not-a-uuid/stats"},
		{http.MethodGet, "/events/not-a-uuid/sales"},
		{http.MethodGet, "/events/not-a-uuid/tickets"},
		{http.MethodPost, "/tickets/not-a-uuid/checkin"},
		{http.MethodGet, "/tickets/not-a-uuid/qr"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := doReq(t, r, tc.method, tc.path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateEventValidation(t *testing.T) {
	r := newTestRouter(t)

	t.Run("missing name", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/events",
			`{"date":"2026-10-01T19:00:00Z","ticketTypes":[{"name":"Padrao","price":"150"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no ticket types", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/events",
			`{"name":"Festa","date":"2026-10-01T19:00:00Z","ticketTypes":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad date format", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/events",
			`{"name":"Festa","date":"10/01/2026","ticketTypes":[{"name":"Padrao","price":"150"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non numeric price", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/events",
			`{"name":"Festa","date":"2026-10-01T19:00:00Z","ticketTypes":[{"name":"Padrao","price":"abc"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateSaleValidation(t *testing.T) {
	r := newTestRouter(t)

	t.Run("missing body", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/sales", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing customer name", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/sales", fmt.Sprintf(
			`{"eventId":"%s","items":[{"ticketTypeId":"%s","quantity":1}]}`,
			"3b6f3f3e-7b1a-4c5e-9a3a-111111111111",
			"3b6f3f3e-7b1a-4c5e-9a3a-222222222222"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty items", func(t *testing.T) {
		w := doReq(t, r, http.MethodPost, "/sales", fmt.Sprintf(
			`{"eventId":"%s","customerName":"Ana","items":[]}`,
			"3b6f3f3e-7b1a-4c5e-9a3a-111111111111"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestScanRequiresPayload(t *testing.T) {
	r := newTestRouter(t)
	w := doReq(t, r, http.MethodPost, "/checkin/scan", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondErrMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", sales.ErrEmptyCart, http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("service.Sales.Create: %w", sales.ErrCustomerNameRequired), http.StatusUnprocessableEntity},
		{"event not found", events.ErrEventNotFound, http.StatusNotFound},
		{"ticket not found", query.ErrTicketNotFound, http.StatusNotFound},
		{"order not found", checkin.ErrOrderNotFound, http.StatusNotFound},
		{"quota", sales.ErrQuotaExceeded, http.StatusConflict},
		{"already checked in", checkin.ErrAlreadyCheckedIn, http.StatusConflict},
		{"invalid qr", checkin.ErrInvalidQRCode, http.StatusBadRequest},
		{"serialization failure", fmt.Errorf("service.checkin.CheckIn: %w", &pgconn.PgError{Code: "40001"}), http.StatusConflict},
		{"deadlock", fmt.Errorf("service.sales.Create: %w", &pgconn.PgError{Code: "40P01"}), http.StatusConflict},
		{"schema missing", fmt.Errorf("repository.EventRepo.List: %w", repository.ErrSchemaMissing), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondErr(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestSchemaMissingMentionsMigrations(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondErr(c, repository.ErrSchemaMissing)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "migrations")
}
