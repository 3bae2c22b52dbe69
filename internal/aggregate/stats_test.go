package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingresso-go/internal/domain"
)

func conferenceEvent() domain.Event {
	return domain.Event{
		ID:   uuid.New(),
		Name: "Conference",
		Date: time.Date(2024, 12, 10, 9, 0, 0, 0, time.UTC),
		TicketTypes: []domain.TicketType{
			{ID: uuid.New(), Name: "Standard", Price: decimal.NewFromInt(150)},
			{ID: uuid.New(), Name: "VIP", Price: decimal.NewFromInt(400)},
		},
	}
}

func saleOf(event domain.Event, status domain.PaymentStatus, typeCounts map[int]int, checkedIn int) domain.Sale {
	sale := domain.Sale{
		ID:            uuid.New(),
		EventID:       event.ID,
		OrderNumber:   "ORD-2024-001",
		CustomerName:  "Ana",
		PaymentStatus: status,
	}
	for idx, n := range typeCounts {
		for i := 0; i < n; i++ {
			sale.Tickets = append(sale.Tickets, domain.Ticket{
				ID:            uuid.New(),
				EventID:       event.ID,
				TicketTypeID:  event.TicketTypes[idx].ID,
				SaleID:        sale.ID,
				OrderNumber:   sale.OrderNumber,
				PaymentStatus: status,
				CheckedIn:     checkedIn > 0,
			})
			checkedIn--
		}
	}
	return sale
}

func TestComputeEventStats_Example(t *testing.T) {
	event := conferenceEvent()

	// {Standard: 2, VIP: 1} => 700.00 total
	sale := saleOf(event, domain.PaymentPending, map[int]int{0: 2, 1: 1}, 0)

	stats := ComputeEventStats(event, []domain.Sale{sale})

	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(700)),
		"total revenue = %s", stats.TotalRevenue)
	assert.True(t, stats.PendingRevenue.Equal(decimal.NewFromInt(700)))
	assert.True(t, stats.PaidRevenue.IsZero())
	assert.Equal(t, 3, stats.TicketsSold)
	assert.Equal(t, 0, stats.CheckIns)

	standard := stats.PerType[event.TicketTypes[0].ID]
	assert.Equal(t, 2, standard.Sold)
	assert.True(t, standard.Revenue.Equal(decimal.NewFromInt(300)))

	vip := stats.PerType[event.TicketTypes[1].ID]
	assert.Equal(t, 1, vip.Sold)
	assert.True(t, vip.Revenue.Equal(decimal.NewFromInt(400)))
}

func TestComputeEventStats_PaidPartitionAndCheckIns(t *testing.T) {
	event := conferenceEvent()

	paid := saleOf(event, domain.PaymentPaid, map[int]int{0: 1}, 1)
	pending := saleOf(event, domain.PaymentPending, map[int]int{1: 1}, 0)

	stats := ComputeEventStats(event, []domain.Sale{paid, pending})

	assert.True(t, stats.PaidRevenue.Equal(decimal.NewFromInt(150)))
	assert.True(t, stats.PendingRevenue.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, 1, stats.CheckIns)
	assert.Equal(t, 1, stats.PerType[event.TicketTypes[0].ID].CheckIns)
}

func TestComputeEventStats_ZeroSales(t *testing.T) {
	stats := ComputeEventStats(conferenceEvent(), nil)

	assert.True(t, stats.TotalRevenue.IsZero())
	assert.True(t, stats.PaidRevenue.IsZero())
	assert.True(t, stats.PendingRevenue.IsZero())
	assert.Equal(t, 0, stats.TicketsSold)
	assert.Equal(t, 0, stats.CheckIns)
	require.Len(t, stats.PerType, 2)
	for _, ts := range stats.PerType {
		assert.Equal(t, 0, ts.Sold)
		assert.True(t, ts.Revenue.IsZero())
	}
}

func TestComputeEventStats_SkipsUnknownTicketType(t *testing.T) {
	event := conferenceEvent()
	sale := saleOf(event, domain.PaymentPaid, map[int]int{0: 1}, 0)
	// ticket pointing at a type that was never (or no longer is) on the event
	sale.Tickets = append(sale.Tickets, domain.Ticket{
		ID:           uuid.New(),
		EventID:      event.ID,
		TicketTypeID: uuid.New(),
		SaleID:       sale.ID,
		OrderNumber:  sale.OrderNumber,
	})

	stats := ComputeEventStats(event, []domain.Sale{sale})

	assert.Equal(t, 1, stats.TicketsSold)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(150)))
}

func TestDaysRemaining(t *testing.T) {
	event := conferenceEvent()

	now := event.Date.Add(-36 * time.Hour)
	assert.Equal(t, 2, DaysRemaining(event, now))

	assert.Equal(t, -1, DaysRemaining(event, event.Date.Add(time.Hour)))
}
