package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ingresso-go/internal/domain"
	"ingresso-go/internal/export"
	"ingresso-go/internal/numbering"
	"ingresso-go/internal/repository"
	postgresrepo "ingresso-go/internal/repository/postgres"
	redisrepo "ingresso-go/internal/repository/redis"
	"ingresso-go/internal/service"
	"ingresso-go/internal/service/checkin"
	"ingresso-go/internal/service/events"
	"ingresso-go/internal/service/query"
	"ingresso-go/internal/service/sales"
)

type RouterConfig struct {
	QRSecret string
}

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg RouterConfig,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), MetricsMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health + metrics
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/events", handleListEvents(svcs))
	r.POST("/events", handleCreateEvent(svcs))
	r.GET("/events/:id", handleGetEvent(svcs))
	r.DELETE("/events/:id", handleDeleteEvent(svcs))
	r.GET("/events/:id/stats", handleEventStats(svcs))
	r.GET("/events/:id/sales", handleListSales(svcs))
	r.GET("/events/:id/tickets", handleListTickets(svcs))
	r.POST("/events/:id/orders/:orderNumber/payment", handleSetPaymentPaid(svcs))

	r.POST("/sales", handleCreateSale(svcs, idem, limiter))

	r.POST("/tickets/:id/checkin", handleCheckIn(svcs))
	r.GET("/tickets/:id/qr", handleTicketQR(svcs, cfg.QRSecret))
	r.POST("/checkin/scan", handleScan(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List events
// @Success  200  {array}  domain.Event
// @Router   /events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Events.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=15", true)
	}
}

// @Summary  Create event with ticket types
// @Param    req body CreateEventRequest true "payload"
// @Success  201 {object} domain.Event
// @Failure  422 {object} ErrorResponse
// @Router   /events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseRFC3339(req.Date)
		if err != nil {
			badRequest(c, "invalid date (RFC3339)")
			return
		}

		in := events.CreateInput{Name: req.Name, Date: date}
		for _, tt := range req.TicketTypes {
			price, err := decimal.NewFromString(tt.Price)
			if err != nil {
				badRequest(c, "invalid price for ticket type "+tt.Name)
				return
			}
			in.TicketTypes = append(in.TicketTypes, events.TicketTypeInput{
				Name:  tt.Name,
				Price: price,
				Quota: tt.Quota,
			})
		}

		e, err := svcs.Events.Create(c.Request.Context(), in)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

// @Summary  Get event
// @Param    id  path  string  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Events.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  Delete event and cascade its sales
// @Param    id  path  string  true  "Event ID"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [delete]
func handleDeleteEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Events.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Event dashboard statistics
// @Param    id  path  string  true  "Event ID"
// @Success  200  {object}  query.Dashboard
// @Router   /events/{id}/stats [get]
func handleEventStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		stats, err := svcs.Query.Dashboard(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, stats, "public, max-age=15", true)
	}
}

// @Summary  List event sales (tickets grouped by order)
// @Param    id  path  string  true  "Event ID"
// @Success  200  {array}  domain.Sale
// @Router   /events/{id}/sales [get]
func handleListSales(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		list, err := svcs.Query.ListSales(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=15", true)
	}
}

// @Summary  List event tickets (flat, searchable)
// @Param    id  path   string  true   "Event ID"
// @Param    q   query  string  false  "search term"
// @Success  200  {array}  domain.Ticket
// @Router   /events/{id}/tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		list, err := svcs.Query.ListTickets(c.Request.Context(), id, c.Query("q"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=15", true)
	}
}

// @Summary  Create sale (idempotent)
// @Param    req body CreateSaleRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Sale
// @Failure  409 {object} ErrorResponse "quota exceeded / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /sales [post]
func handleCreateSale(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		eventID, err := uuid.Parse(req.EventID)
		if err != nil {
			badRequest(c, "invalid eventId")
			return
		}

		if limiter != nil {
			allowed, _, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
			if err == nil && !allowed {
				c.Header("Retry-After", retryAfter.String())
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemSale(eventID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				c.JSON(http.StatusConflict, ErrorResponse{Error: "request already in progress"})
				return
			}
		}

		in := sales.CreateInput{
			EventID:       eventID,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			PaymentStatus: domain.PaymentStatus(req.PaymentStatus),
			PaymentMethod: req.PaymentMethod,
			Details:       req.Details,
		}
		for _, item := range req.Items {
			typeID, err := uuid.Parse(item.TicketTypeID)
			if err != nil {
				badRequest(c, "invalid ticketTypeId")
				return
			}
			in.Items = append(in.Items, numbering.Request{
				TicketTypeID: typeID,
				Quantity:     item.Quantity,
			})
		}

		sale, err := svcs.Sales.Create(c.Request.Context(), in)
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" {
			if b, err := json.Marshal(sale); err == nil {
				_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			}
			c.Header("Idempotency-Key", idemKey)
		}
		c.JSON(http.StatusCreated, sale)
	}
}

// @Summary  Check a ticket in (or toggle, per configuration)
// @Param    id  path  string  true  "Ticket ID"
// @Success  200  {object}  domain.Ticket
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "already checked in (confirm mode)"
// @Router   /tickets/{id}/checkin [post]
func handleCheckIn(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		t, err := svcs.Checkin.CheckIn(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Mark an order's payment as settled
// @Param    id           path  string  true  "Event ID"
// @Param    orderNumber  path  string  true  "Order number"
// @Param    req  body  PaymentRequest  true  "payload"
// @Success  200  {array}  domain.Ticket
// @Router   /events/{id}/orders/{orderNumber}/payment [post]
func handleSetPaymentPaid(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		tickets, err := svcs.Checkin.SetPaymentPaid(
			c.Request.Context(), id, c.Param("orderNumber"), req.Method,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, tickets)
	}
}

// @Summary  Ticket QR code as PNG
// @Param    id  path  string  true  "Ticket ID"
// @Produce  png
// @Success  200
// @Router   /tickets/{id}/qr [get]
func handleTicketQR(svcs *service.Services, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		t, err := svcs.Query.Ticket(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		png, err := export.TicketPNG(*t, secret)
		if err != nil {
			respondErr(c, err)
			return
		}

		event, err := svcs.Events.Get(c.Request.Context(), t.EventID)
		if err == nil {
			filename := export.CardFilename(t.OrderNumber, t.CustomerName, event.Name, event.Date)
			c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// @Summary  Check in from a scanned QR payload
// @Param    req  body  ScanRequest  true  "payload"
// @Success  200  {object}  domain.Ticket
// @Failure  400  {object}  ErrorResponse "invalid QR code"
// @Router   /checkin/scan [post]
func handleScan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		t, err := svcs.Checkin.CheckInFromQR(c.Request.Context(), req.QRData)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// validation
	case errors.Is(err, events.ErrNameRequired),
		errors.Is(err, events.ErrDateRequired),
		errors.Is(err, events.ErrNoTicketTypes),
		errors.Is(err, events.ErrInvalidPrice),
		errors.Is(err, events.ErrTypeNameMissing),
		errors.Is(err, sales.ErrCustomerNameRequired),
		errors.Is(err, sales.ErrEmptyCart),
		errors.Is(err, sales.ErrNegativeQuantity),
		errors.Is(err, sales.ErrUnknownTicketType),
		errors.Is(err, sales.ErrInvalidPaymentStatus):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: rootMessage(err)})
		return
	// not found
	case errors.Is(err, events.ErrEventNotFound),
		errors.Is(err, sales.ErrEventNotFound),
		errors.Is(err, query.ErrEventNotFound),
		errors.Is(err, query.ErrTicketNotFound),
		errors.Is(err, checkin.ErrTicketNotFound),
		errors.Is(err, checkin.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: rootMessage(err)})
		return
	// conflicts
	case errors.Is(err, sales.ErrQuotaExceeded),
		errors.Is(err, checkin.ErrAlreadyCheckedIn),
		errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: rootMessage(err)})
		return
	// serialization failure or deadlock: the transaction lost a race and
	// was rolled back whole; the client decides whether to resubmit
	case postgresrepo.IsRetryable(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "concurrent update, retry the request"})
		return
	case errors.Is(err, checkin.ErrInvalidQRCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: rootMessage(err)})
		return
	// schema not ready: distinct remediation from plain connectivity loss
	case errors.Is(err, repository.ErrSchemaMissing):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "database schema missing: apply migrations/0001_init.sql and retry",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// rootMessage unwraps the op-prefixed chain down to the sentinel text.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
