package numbering

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingresso-go/internal/domain"
)

func testBatch(year int) Batch {
	return Batch{
		SaleID:        uuid.New(),
		EventID:       uuid.New(),
		Year:          year,
		BaseTicketSeq: 1,
		OrderSeq:      1,
		CustomerName:  "Maria Silva",
		CustomerPhone: "(11) 99999-0000",
		PaymentStatus: domain.PaymentPending,
		IssuedAt:      time.Now(),
	}
}

func TestAllocate_OneTicketPerUnit(t *testing.T) {
	standard := uuid.New()
	vip := uuid.New()

	orderNumber, tickets, err := Allocate(testBatch(2024), []Request{
		{TicketTypeID: standard, Quantity: 2},
		{TicketTypeID: vip, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	assert.Equal(t, "ORD-2024-001", orderNumber)

	seen := make(map[string]bool)
	for _, tk := range tickets {
		assert.Equal(t, orderNumber, tk.OrderNumber)
		assert.False(t, tk.CheckedIn)
		assert.False(t, seen[tk.TicketNumber], "duplicate ticket number %s", tk.TicketNumber)
		seen[tk.TicketNumber] = true
	}

	// offset increments per unit across the whole batch, not per type
	assert.Equal(t, "EVT-2024-0001", tickets[0].TicketNumber)
	assert.Equal(t, "EVT-2024-0002", tickets[1].TicketNumber)
	assert.Equal(t, "EVT-2024-0003", tickets[2].TicketNumber)

	// the numeric sequence travels with the ticket
	for i, tk := range tickets {
		assert.Equal(t, int64(i+1), tk.TicketSeq)
	}

	assert.Equal(t, standard, tickets[0].TicketTypeID)
	assert.Equal(t, vip, tickets[2].TicketTypeID)
}

func TestAllocate_NumberFormats(t *testing.T) {
	orderRe := regexp.MustCompile(`^ORD-\d{4}-\d{3,}$`)
	ticketRe := regexp.MustCompile(`^EVT-\d{4}-\d{4,}$`)

	b := testBatch(2025)
	b.OrderSeq = 42
	b.BaseTicketSeq = 9998

	orderNumber, tickets, err := Allocate(b, []Request{{TicketTypeID: uuid.New(), Quantity: 3}})
	require.NoError(t, err)

	assert.Regexp(t, orderRe, orderNumber)
	assert.Equal(t, "ORD-2025-042", orderNumber)
	for _, tk := range tickets {
		assert.Regexp(t, ticketRe, tk.TicketNumber)
	}
	// padding does not truncate once the sequence outgrows it
	assert.Equal(t, "EVT-2025-9999", tickets[1].TicketNumber)
	assert.Equal(t, "EVT-2025-10000", tickets[2].TicketNumber)
	assert.Equal(t, int64(10000), tickets[2].TicketSeq)
}

func TestValidateRequests(t *testing.T) {
	assert.ErrorIs(t, ValidateRequests(nil), ErrEmptyBatch)
	assert.ErrorIs(t, ValidateRequests([]Request{{TicketTypeID: uuid.New(), Quantity: 0}}), ErrEmptyBatch)
	assert.ErrorIs(t, ValidateRequests([]Request{
		{TicketTypeID: uuid.New(), Quantity: 2},
		{TicketTypeID: uuid.New(), Quantity: -1},
	}), ErrNegativeQuantity)
	assert.NoError(t, ValidateRequests([]Request{{TicketTypeID: uuid.New(), Quantity: 1}}))
}

func TestQuantityByType(t *testing.T) {
	standard := uuid.New()
	vip := uuid.New()

	perType := QuantityByType([]Request{
		{TicketTypeID: standard, Quantity: 2},
		{TicketTypeID: vip, Quantity: 1},
		{TicketTypeID: standard, Quantity: 3}, // same type, second line
		{TicketTypeID: uuid.New(), Quantity: 0},
	})

	assert.Equal(t, map[uuid.UUID]int{standard: 5, vip: 1}, perType)
}

func TestAllocate_RejectsInvalidBatch(t *testing.T) {
	_, _, err := Allocate(testBatch(2024), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, _, err = Allocate(testBatch(2024), []Request{{TicketTypeID: uuid.New(), Quantity: -2}})
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}
