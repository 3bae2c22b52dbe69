// Package aggregate derives sale and dashboard views from the flat ticket
// collection. Everything here is a pure function of its inputs; the views
// are recomputed on demand, never persisted.
package aggregate

import (
	"strings"

	"ingresso-go/internal/domain"
)

// GroupTickets folds a flat, ordered ticket sequence into sales, one per
// order number. The first ticket seen for an order seeds the sale's scalar
// fields; subsequent tickets are appended in encounter order. Single pass,
// insertion-order preserving.
func GroupTickets(tickets []domain.Ticket) []domain.Sale {
	index := make(map[string]int)
	sales := make([]domain.Sale, 0)

	for _, t := range tickets {
		i, ok := index[t.OrderNumber]
		if !ok {
			i = len(sales)
			index[t.OrderNumber] = i
			sales = append(sales, domain.Sale{
				ID:            t.SaleID,
				EventID:       t.EventID,
				OrderNumber:   t.OrderNumber,
				CustomerName:  t.CustomerName,
				CustomerPhone: t.CustomerPhone,
				PaymentStatus: t.PaymentStatus,
				PaymentMethod: t.PaymentMethod,
				Details:       t.Details,
				Timestamp:     t.IssuedAt,
			})
		}
		sales[i].Tickets = append(sales[i].Tickets, t)
	}

	return sales
}

// FilterTickets keeps tickets matching the search term against customer
// name, order number or ticket number. Case-insensitive substring match,
// the same lookup the door staff use during manual validation.
func FilterTickets(tickets []domain.Ticket, term string) []domain.Ticket {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return tickets
	}

	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.Contains(strings.ToLower(t.CustomerName), term) ||
			strings.Contains(strings.ToLower(t.OrderNumber), term) ||
			strings.Contains(strings.ToLower(t.TicketNumber), term) {
			out = append(out, t)
		}
	}
	return out
}
