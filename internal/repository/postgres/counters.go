package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterRepo hands out monotonically increasing sequence values. The
// increment happens in a single statement on the database, so concurrent
// sale submissions can never observe the same value.
type CounterRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CounterRepo) With(db DB) *CounterRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CounterRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scopePrefix(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s:", eventID)
}

// TicketScope names the per-event ticket number sequence.
func TicketScope(eventID uuid.UUID) string {
	return scopePrefix(eventID) + "tickets"
}

// OrderScope names the per-event, per-year order number sequence.
func OrderScope(eventID uuid.UUID, year int) string {
	return fmt.Sprintf("%sorders:%d", scopePrefix(eventID), year)
}

// Next reserves n consecutive values on the scope's sequence and returns
// the last one. The first reserved value is the returned value minus n
// plus one.
func (r *CounterRepo) Next(ctx context.Context, scope string, n int64) (int64, error) {
	const op = "postgresrepo.CounterRepo.Next"

	db := r.handle()

	var value int64
	err := db.QueryRow(ctx,
		`INSERT INTO counters (scope, value) VALUES ($1, $2)
		 ON CONFLICT (scope) DO UPDATE SET value = counters.value + $2
		 RETURNING value`,
		scope, n,
	).Scan(&value)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return value, nil
}
