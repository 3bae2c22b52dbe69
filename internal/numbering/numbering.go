// Package numbering assigns human-facing sequential numbers to sales and
// tickets. It is purely computational: the sequence values themselves are
// reserved atomically by the store, never read-then-incremented here.
package numbering

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ingresso-go/internal/domain"
)

var (
	ErrEmptyBatch       = errors.New("batch requests no tickets")
	ErrNegativeQuantity = errors.New("negative ticket quantity")
)

// Request is one line of a sale's cart.
type Request struct {
	TicketTypeID uuid.UUID
	Quantity     int
}

// Batch carries everything a single sale submission needs to mint its
// tickets. BaseTicketSeq is the first sequence value reserved for the
// batch; OrderSeq the reserved order sequence for the event's year.
type Batch struct {
	SaleID        uuid.UUID
	EventID       uuid.UUID
	Year          int
	BaseTicketSeq int64
	OrderSeq      int64
	CustomerName  string
	CustomerPhone string
	PaymentStatus domain.PaymentStatus
	PaymentMethod string
	Details       string
	IssuedAt      time.Time
}

// OrderNumber formats a year-scoped order sequence, e.g. ORD-2024-003.
func OrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%d-%03d", year, seq)
}

// TicketNumber formats a ticket sequence, e.g. EVT-2024-0001. The padding
// is display-only: past 9999 the number simply grows, so issue order must
// come from the numeric sequence, never from sorting these strings.
func TicketNumber(year int, seq int64) string {
	return fmt.Sprintf("EVT-%d-%04d", year, seq)
}

// ValidateRequests rejects negative quantities and zero-total batches.
func ValidateRequests(reqs []Request) error {
	total := 0
	for _, r := range reqs {
		if r.Quantity < 0 {
			return ErrNegativeQuantity
		}
		total += r.Quantity
	}
	if total == 0 {
		return ErrEmptyBatch
	}
	return nil
}

// TotalQuantity sums the requested units across the whole batch.
func TotalQuantity(reqs []Request) int {
	total := 0
	for _, r := range reqs {
		total += r.Quantity
	}
	return total
}

// QuantityByType sums the requested units per ticket type. A cart may
// carry the same type on several lines; capacity checks must see the
// combined quantity, not each line alone. Types with zero units are
// omitted.
func QuantityByType(reqs []Request) map[uuid.UUID]int {
	perType := make(map[uuid.UUID]int)
	for _, r := range reqs {
		if r.Quantity > 0 {
			perType[r.TicketTypeID] += r.Quantity
		}
	}
	return perType
}

// Allocate mints one ticket per requested unit. Ticket numbers increase by
// one per unit across the whole batch, regardless of ticket type; every
// ticket shares the batch's order number.
func Allocate(b Batch, reqs []Request) (string, []domain.Ticket, error) {
	if err := ValidateRequests(reqs); err != nil {
		return "", nil, err
	}

	orderNumber := OrderNumber(b.Year, b.OrderSeq)

	tickets := make([]domain.Ticket, 0, TotalQuantity(reqs))
	seq := b.BaseTicketSeq
	for _, r := range reqs {
		for i := 0; i < r.Quantity; i++ {
			tickets = append(tickets, domain.Ticket{
				ID:            uuid.New(),
				EventID:       b.EventID,
				TicketTypeID:  r.TicketTypeID,
				SaleID:        b.SaleID,
				OrderNumber:   orderNumber,
				TicketNumber:  TicketNumber(b.Year, seq),
				TicketSeq:     seq,
				CustomerName:  b.CustomerName,
				CustomerPhone: b.CustomerPhone,
				PaymentStatus: b.PaymentStatus,
				PaymentMethod: b.PaymentMethod,
				Details:       b.Details,
				CheckedIn:     false,
				IssuedAt:      b.IssuedAt,
			})
			seq++
		}
	}

	return orderNumber, tickets, nil
}
