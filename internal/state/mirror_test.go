package state

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingresso-go/internal/domain"
)

func ticketRow(eventID uuid.UUID, seq int64) domain.Ticket {
	return domain.Ticket{
		ID:            uuid.New(),
		EventID:       eventID,
		TicketTypeID:  uuid.New(),
		SaleID:        uuid.New(),
		OrderNumber:   "ORD-2024-001",
		TicketNumber:  fmt.Sprintf("EVT-2024-%04d", seq),
		TicketSeq:     seq,
		CustomerName:  "Ana",
		PaymentStatus: domain.PaymentPending,
		IssuedAt:      time.Now(),
	}
}

func mustChange(t *testing.T, action domain.ChangeAction, table string, row any) domain.Change {
	t.Helper()
	b, err := json.Marshal(row)
	require.NoError(t, err)

	ch := domain.Change{Action: action, Table: table}
	if action == domain.ChangeDelete {
		ch.Old = b
	} else {
		ch.New = b
	}
	return ch
}

func TestMirror_ApplyInsertUpdateDelete(t *testing.T) {
	m := NewMirror()
	eventID := uuid.New()
	tk := ticketRow(eventID, 1)

	require.NoError(t, m.Apply(mustChange(t, domain.ChangeInsert, domain.TableTickets, tk)))

	got, ok := m.Ticket(tk.ID)
	require.True(t, ok)
	assert.False(t, got.CheckedIn)

	tk.CheckedIn = true
	require.NoError(t, m.Apply(mustChange(t, domain.ChangeUpdate, domain.TableTickets, tk)))

	got, _ = m.Ticket(tk.ID)
	assert.True(t, got.CheckedIn)

	require.NoError(t, m.Apply(mustChange(t, domain.ChangeDelete, domain.TableTickets, tk)))

	_, ok = m.Ticket(tk.ID)
	assert.False(t, ok)
}

func TestMirror_ApplyIsIdempotent(t *testing.T) {
	m := NewMirror()
	tk := ticketRow(uuid.New(), 1)
	ins := mustChange(t, domain.ChangeInsert, domain.TableTickets, tk)

	require.NoError(t, m.Apply(ins))
	require.NoError(t, m.Apply(ins))

	assert.Len(t, m.TicketsByEvent(tk.EventID), 1)
}

func TestMirror_EventDeleteDropsItsTickets(t *testing.T) {
	m := NewMirror()
	event := domain.Event{ID: uuid.New(), Name: "Conference", Date: time.Now()}
	other := domain.Event{ID: uuid.New(), Name: "Workshop", Date: time.Now()}

	m.Seed(
		[]domain.Event{event, other},
		[]domain.Ticket{
			ticketRow(event.ID, 1),
			ticketRow(event.ID, 2),
			ticketRow(other.ID, 1),
		},
	)

	require.NoError(t, m.Apply(mustChange(t, domain.ChangeDelete, domain.TableEvents, event)))

	_, ok := m.Event(event.ID)
	assert.False(t, ok)
	assert.Empty(t, m.TicketsByEvent(event.ID))
	assert.Len(t, m.TicketsByEvent(other.ID), 1)
}

func TestMirror_TicketsByEventOrdered(t *testing.T) {
	m := NewMirror()
	eventID := uuid.New()

	m.Seed(nil, []domain.Ticket{
		ticketRow(eventID, 3),
		ticketRow(eventID, 1),
		ticketRow(eventID, 2),
	})

	tickets := m.TicketsByEvent(eventID)
	require.Len(t, tickets, 3)
	assert.Equal(t, "EVT-2024-0001", tickets[0].TicketNumber)
	assert.Equal(t, "EVT-2024-0003", tickets[2].TicketNumber)
}

// Issue order must survive the sequence outgrowing the number's zero
// padding: "EVT-2024-10000" sorts before "EVT-2024-9999" as a string but
// was issued after it.
func TestMirror_TicketsByEventOrderedPastPadding(t *testing.T) {
	m := NewMirror()
	eventID := uuid.New()

	m.Seed(nil, []domain.Ticket{
		ticketRow(eventID, 10000),
		ticketRow(eventID, 9999),
	})

	tickets := m.TicketsByEvent(eventID)
	require.Len(t, tickets, 2)
	assert.Equal(t, "EVT-2024-9999", tickets[0].TicketNumber)
	assert.Equal(t, "EVT-2024-10000", tickets[1].TicketNumber)
}
