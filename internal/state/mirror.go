// Package state keeps a canonical in-memory copy of the events and tickets
// collections, fed by the realtime change feed. It serves fast reads for
// the door (attendee lookup) and carries the optimistic-update machinery
// for check-ins and payment changes.
package state

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ingresso-go/internal/domain"
)

type Mirror struct {
	mu      sync.RWMutex
	events  map[uuid.UUID]domain.Event
	tickets map[uuid.UUID]domain.Ticket

	// last persistence failure per ticket, cleared on the next successful
	// write. This is the user-facing "change was not saved" indicator.
	failures map[uuid.UUID]string
}

func NewMirror() *Mirror {
	return &Mirror{
		events:   make(map[uuid.UUID]domain.Event),
		tickets:  make(map[uuid.UUID]domain.Ticket),
		failures: make(map[uuid.UUID]string),
	}
}

// Seed replaces the mirror contents with a full snapshot from the store.
// Called once at startup, before the feed subscription begins.
func (m *Mirror) Seed(events []domain.Event, tickets []domain.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make(map[uuid.UUID]domain.Event, len(events))
	for _, e := range events {
		m.events[e.ID] = e
	}
	m.tickets = make(map[uuid.UUID]domain.Ticket, len(tickets))
	for _, t := range tickets {
		m.tickets[t.ID] = t
	}
}

// Apply reconciles one change-feed record. Replaying a record is a no-op:
// inserts and updates both resolve to "store this row under its id",
// deletes to "drop this id".
func (m *Mirror) Apply(ch domain.Change) error {
	switch ch.Table {
	case domain.TableEvents:
		return applyTo(m, ch, m.applyEvent)
	case domain.TableTickets:
		return applyTo(m, ch, m.applyTicket)
	default:
		// feed may carry tables this mirror does not track
		return nil
	}
}

func applyTo[T any](m *Mirror, ch domain.Change, apply func(domain.ChangeAction, T)) error {
	raw := ch.New
	if ch.Action == domain.ChangeDelete {
		raw = ch.Old
	}

	var row T
	if err := json.Unmarshal(raw, &row); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	apply(ch.Action, row)
	return nil
}

func (m *Mirror) applyEvent(action domain.ChangeAction, e domain.Event) {
	switch action {
	case domain.ChangeDelete:
		delete(m.events, e.ID)
		for id, t := range m.tickets {
			if t.EventID == e.ID {
				delete(m.tickets, id)
			}
		}
	default:
		m.events[e.ID] = e
	}
}

func (m *Mirror) applyTicket(action domain.ChangeAction, t domain.Ticket) {
	switch action {
	case domain.ChangeDelete:
		delete(m.tickets, t.ID)
	default:
		m.tickets[t.ID] = t
	}
}

func (m *Mirror) Event(id uuid.UUID) (domain.Event, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	return e, ok
}

func (m *Mirror) Events() []domain.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (m *Mirror) Ticket(id uuid.UUID) (domain.Ticket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	return t, ok
}

// TicketsByEvent returns the event's tickets in issue order, sorted on the
// numeric sequence. Sorting the formatted ticket numbers would misplace
// sequences past the zero padding ("...-10000" before "...-9999").
func (m *Mirror) TicketsByEvent(eventID uuid.UUID) []domain.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Ticket, 0)
	for _, t := range m.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketSeq < out[j].TicketSeq })
	return out
}

// LastFailure reports the unsaved-change message for a ticket, if any.
func (m *Mirror) LastFailure(id uuid.UUID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.failures[id]
	return msg, ok
}
