package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingresso-go/internal/domain"
)

func flatTickets() []domain.Ticket {
	eventID := uuid.New()
	typeID := uuid.New()
	saleA := uuid.New()
	saleB := uuid.New()
	issued := time.Date(2024, 11, 2, 14, 0, 0, 0, time.UTC)

	return []domain.Ticket{
		{
			ID: uuid.New(), EventID: eventID, TicketTypeID: typeID, SaleID: saleA,
			OrderNumber: "ORD-2024-001", TicketNumber: "EVT-2024-0001",
			CustomerName: "Ana", CustomerPhone: "111",
			PaymentStatus: domain.PaymentPaid, IssuedAt: issued,
		},
		{
			ID: uuid.New(), EventID: eventID, TicketTypeID: typeID, SaleID: saleA,
			OrderNumber: "ORD-2024-001", TicketNumber: "EVT-2024-0002",
			CustomerName: "Ana", CustomerPhone: "111",
			PaymentStatus: domain.PaymentPaid, IssuedAt: issued,
		},
		{
			ID: uuid.New(), EventID: eventID, TicketTypeID: typeID, SaleID: saleB,
			OrderNumber: "ORD-2024-002", TicketNumber: "EVT-2024-0003",
			CustomerName: "Bruno", CustomerPhone: "222",
			PaymentStatus: domain.PaymentPending, IssuedAt: issued.Add(time.Hour),
		},
	}
}

func TestGroupTickets(t *testing.T) {
	tickets := flatTickets()

	sales := GroupTickets(tickets)
	require.Len(t, sales, 2)

	assert.Equal(t, "ORD-2024-001", sales[0].OrderNumber)
	assert.Equal(t, "Ana", sales[0].CustomerName)
	assert.Equal(t, domain.PaymentPaid, sales[0].PaymentStatus)
	assert.Len(t, sales[0].Tickets, 2)
	assert.Equal(t, "EVT-2024-0001", sales[0].Tickets[0].TicketNumber)
	assert.Equal(t, "EVT-2024-0002", sales[0].Tickets[1].TicketNumber)

	assert.Equal(t, "ORD-2024-002", sales[1].OrderNumber)
	assert.Equal(t, "Bruno", sales[1].CustomerName)
	assert.Len(t, sales[1].Tickets, 1)
}

func TestGroupTickets_Idempotent(t *testing.T) {
	tickets := flatTickets()

	first := GroupTickets(tickets)
	second := GroupTickets(tickets)

	assert.Equal(t, first, second)
}

func TestGroupTickets_Empty(t *testing.T) {
	assert.Empty(t, GroupTickets(nil))
}

func TestFilterTickets(t *testing.T) {
	tickets := flatTickets()

	assert.Len(t, FilterTickets(tickets, ""), 3)
	assert.Len(t, FilterTickets(tickets, "ana"), 2)
	assert.Len(t, FilterTickets(tickets, "ORD-2024-002"), 1)
	assert.Len(t, FilterTickets(tickets, "evt-2024-0003"), 1)
	assert.Empty(t, FilterTickets(tickets, "carlos"))
}
