package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingresso-go/internal/domain"
)

func TestApplyOptimistic_Success(t *testing.T) {
	m := NewMirror()
	tk := ticketRow(uuid.New(), 1)
	m.Seed(nil, []domain.Ticket{tk})

	var sawOptimistic bool
	err := m.ApplyOptimistic(context.Background(),
		[]uuid.UUID{tk.ID},
		func(t *domain.Ticket) { t.CheckedIn = true },
		func(ctx context.Context) error {
			// readers already see the new value while the write is in flight
			cur, _ := m.Ticket(tk.ID)
			sawOptimistic = cur.CheckedIn
			return nil
		},
	)
	require.NoError(t, err)
	assert.True(t, sawOptimistic)

	got, _ := m.Ticket(tk.ID)
	assert.True(t, got.CheckedIn)

	_, failed := m.LastFailure(tk.ID)
	assert.False(t, failed)
}

func TestApplyOptimistic_RollbackOnFailure(t *testing.T) {
	m := NewMirror()
	tk := ticketRow(uuid.New(), 1)
	m.Seed(nil, []domain.Ticket{tk})

	before, _ := m.Ticket(tk.ID)
	persistErr := errors.New("connection reset")

	err := m.ApplyOptimistic(context.Background(),
		[]uuid.UUID{tk.ID},
		func(t *domain.Ticket) { t.CheckedIn = true },
		func(ctx context.Context) error { return persistErr },
	)
	require.ErrorIs(t, err, persistErr)

	// exact rollback to the pre-mutation value
	after, _ := m.Ticket(tk.ID)
	assert.Equal(t, before, after)

	msg, failed := m.LastFailure(tk.ID)
	assert.True(t, failed)
	assert.Contains(t, msg, "connection reset")
}

func TestApplyOptimistic_FailureClearedOnNextSuccess(t *testing.T) {
	m := NewMirror()
	tk := ticketRow(uuid.New(), 1)
	m.Seed(nil, []domain.Ticket{tk})

	_ = m.ApplyOptimistic(context.Background(),
		[]uuid.UUID{tk.ID},
		func(t *domain.Ticket) { t.CheckedIn = true },
		func(ctx context.Context) error { return errors.New("down") },
	)
	_, failed := m.LastFailure(tk.ID)
	require.True(t, failed)

	err := m.ApplyOptimistic(context.Background(),
		[]uuid.UUID{tk.ID},
		func(t *domain.Ticket) { t.CheckedIn = true },
		func(ctx context.Context) error { return nil },
	)
	require.NoError(t, err)

	_, failed = m.LastFailure(tk.ID)
	assert.False(t, failed)
}

func TestApplyOptimistic_UnknownTicket(t *testing.T) {
	m := NewMirror()

	err := m.ApplyOptimistic(context.Background(),
		[]uuid.UUID{uuid.New()},
		func(t *domain.Ticket) { t.CheckedIn = true },
		func(ctx context.Context) error { return nil },
	)
	assert.ErrorIs(t, err, ErrTicketNotMirrored)
}

func TestApplyOptimistic_DoubleToggleRestoresOriginal(t *testing.T) {
	m := NewMirror()
	tk := ticketRow(uuid.New(), 1)
	m.Seed(nil, []domain.Ticket{tk})

	toggle := func() error {
		return m.ApplyOptimistic(context.Background(),
			[]uuid.UUID{tk.ID},
			func(t *domain.Ticket) { t.CheckedIn = !t.CheckedIn },
			func(ctx context.Context) error { return nil },
		)
	}

	require.NoError(t, toggle())
	mid, _ := m.Ticket(tk.ID)
	assert.True(t, mid.CheckedIn)

	require.NoError(t, toggle())
	end, _ := m.Ticket(tk.ID)
	assert.Equal(t, tk.CheckedIn, end.CheckedIn)
}
