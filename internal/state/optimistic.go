package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ingresso-go/internal/domain"
)

var ErrTicketNotMirrored = errors.New("ticket not in local state")

// ApplyOptimistic mutates the given tickets locally, then calls persist.
// The mutation is visible to readers before the write is confirmed. If
// persist fails, the pre-mutation snapshot is restored exactly as it was
// and the failure is recorded on each affected ticket.
//
// The snapshot is not merged with feed records that arrive between capture
// and rollback; at this scale the brief staleness is acceptable and the
// next feed record for the ticket overwrites it anyway.
func (m *Mirror) ApplyOptimistic(
	ctx context.Context,
	ids []uuid.UUID,
	mutate func(*domain.Ticket),
	persist func(ctx context.Context) error,
) error {
	const op = "state.Mirror.ApplyOptimistic"

	m.mu.Lock()
	snapshot := make(map[uuid.UUID]domain.Ticket, len(ids))
	for _, id := range ids {
		t, ok := m.tickets[id]
		if !ok {
			m.mu.Unlock()
			return fmt.Errorf("%s: %w", op, ErrTicketNotMirrored)
		}
		snapshot[id] = t
	}
	for _, id := range ids {
		t := m.tickets[id]
		mutate(&t)
		m.tickets[id] = t
	}
	m.mu.Unlock()

	// Synced -> PendingWrite: local state already shows the new value.
	if err := persist(ctx); err != nil {
		// PendingWrite -> Failed -> Synced(reverted)
		m.mu.Lock()
		for id, t := range snapshot {
			m.tickets[id] = t
			m.failures[id] = err.Error()
		}
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}

	// PendingWrite -> Synced
	m.mu.Lock()
	for _, id := range ids {
		delete(m.failures, id)
	}
	m.mu.Unlock()

	return nil
}
