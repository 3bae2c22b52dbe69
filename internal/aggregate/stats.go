package aggregate

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ingresso-go/internal/domain"
)

// ComputeEventStats derives the dashboard figures for one event from its
// sales. Tickets whose type no longer exists on the event are skipped
// rather than counted. Paid vs pending revenue partitions on the sale's
// payment status.
func ComputeEventStats(event domain.Event, sales []domain.Sale) domain.EventStats {
	stats := domain.EventStats{
		TotalRevenue:   decimal.Zero,
		PaidRevenue:    decimal.Zero,
		PendingRevenue: decimal.Zero,
		PerType:        make(map[uuid.UUID]domain.TypeStats, len(event.TicketTypes)),
	}

	prices := make(map[uuid.UUID]decimal.Decimal, len(event.TicketTypes))
	for _, tt := range event.TicketTypes {
		prices[tt.ID] = tt.Price
		stats.PerType[tt.ID] = domain.TypeStats{Revenue: decimal.Zero}
	}

	for _, sale := range sales {
		for _, t := range sale.Tickets {
			price, ok := prices[t.TicketTypeID]
			if !ok {
				continue
			}

			ts := stats.PerType[t.TicketTypeID]
			ts.Sold++
			ts.Revenue = ts.Revenue.Add(price)
			if t.CheckedIn {
				ts.CheckIns++
				stats.CheckIns++
			}
			stats.PerType[t.TicketTypeID] = ts

			stats.TotalRevenue = stats.TotalRevenue.Add(price)
			stats.TicketsSold++
			if sale.PaymentStatus == domain.PaymentPaid {
				stats.PaidRevenue = stats.PaidRevenue.Add(price)
			} else {
				stats.PendingRevenue = stats.PendingRevenue.Add(price)
			}
		}
	}

	return stats
}

// DaysRemaining reports whole days until the event date, rounded up.
// Negative means the event already happened.
func DaysRemaining(event domain.Event, now time.Time) int {
	diff := event.Date.Sub(now)
	if diff < 0 {
		return -1
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
