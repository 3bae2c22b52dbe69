package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Pago"
	PaymentPending PaymentStatus = "Pendente"
)

type TicketType struct {
	ID      uuid.UUID       `json:"id"`
	EventID uuid.UUID       `json:"eventId"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Quota   *int            `json:"quota,omitempty"` // nil means unlimited
}

type Event struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Date        time.Time    `json:"date"`
	TicketTypes []TicketType `json:"ticketTypes"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Ticket is one admission unit. Customer and payment fields are
// denormalized onto every ticket row; tickets sharing an OrderNumber
// form one sale.
type Ticket struct {
	ID            uuid.UUID     `json:"id"`
	EventID       uuid.UUID     `json:"eventId"`
	TicketTypeID  uuid.UUID     `json:"ticketTypeId"`
	SaleID        uuid.UUID     `json:"saleId"`
	OrderNumber   string        `json:"orderNumber"`
	TicketNumber  string        `json:"uniqueTicketNumber"`
	TicketSeq     int64         `json:"ticketSeq"` // issue order; TicketNumber is display-only
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod"`
	Details       string        `json:"details"`
	CheckedIn     bool          `json:"checkedIn"`
	IssuedAt      time.Time     `json:"issuedAt"`
}

// Sale is a derived view: it has no persisted identity of its own and is
// rebuilt by grouping tickets on OrderNumber.
type Sale struct {
	ID            uuid.UUID     `json:"id"`
	EventID       uuid.UUID     `json:"eventId"`
	OrderNumber   string        `json:"orderNumber"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod"`
	Details       string        `json:"details"`
	Timestamp     time.Time     `json:"timestamp"`
	Tickets       []Ticket      `json:"tickets"`
}

type TypeStats struct {
	Sold     int             `json:"sold"`
	Revenue  decimal.Decimal `json:"revenue"`
	CheckIns int             `json:"checkIns"`
}

type EventStats struct {
	TotalRevenue   decimal.Decimal         `json:"totalRevenue"`
	PaidRevenue    decimal.Decimal         `json:"paidRevenue"`
	PendingRevenue decimal.Decimal         `json:"pendingRevenue"`
	TicketsSold    int                     `json:"ticketsSold"`
	CheckIns       int                     `json:"checkIns"`
	PerType        map[uuid.UUID]TypeStats `json:"perType"`
}

type ChangeAction string

const (
	ChangeInsert ChangeAction = "INSERT"
	ChangeUpdate ChangeAction = "UPDATE"
	ChangeDelete ChangeAction = "DELETE"
)

const (
	TableEvents  = "events"
	TableTickets = "tickets"
)

// Change is one record on the realtime change feed. New carries the
// post-image for INSERT/UPDATE, Old the pre-image for DELETE.
type Change struct {
	Action ChangeAction    `json:"eventType"`
	Table  string          `json:"table"`
	New    json.RawMessage `json:"new,omitempty"`
	Old    json.RawMessage `json:"old,omitempty"`
	TsUnix int64           `json:"ts_unix"`
}
