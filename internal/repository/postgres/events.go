package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ingresso-go/internal/domain"
	"ingresso-go/internal/repository"
)

// EventRepo persists events and their ticket types. Column names are
// snake_case; translation to the camelCase JSON model happens here and
// nowhere downstream.
type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *EventRepo) Create(ctx context.Context, e domain.Event) error {
	const op = "postgresrepo.EventRepo.Create"

	db := r.handle()

	b := &pgx.Batch{}
	b.Queue(
		`INSERT INTO events (id, name, date, created_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.Date, e.CreatedAt,
	)
	for _, tt := range e.TicketTypes {
		b.Queue(
			`INSERT INTO ticket_types (id, event_id, name, price, quota)
			 VALUES ($1, $2, $3, $4, $5)`,
			tt.ID, e.ID, tt.Name, tt.Price, tt.Quota,
		)
	}

	br := db.SendBatch(ctx, b)
	defer br.Close()

	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return wrapDBErr(op, err)
		}
	}

	return nil
}

func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgresrepo.EventRepo.Get"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, name, date, created_at FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	rows, err := db.Query(ctx,
		`SELECT id, event_id, name, price, quota
		 FROM ticket_types WHERE event_id = $1 ORDER BY name`,
		id,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quota); err != nil {
			return nil, wrapDBErr(op, err)
		}
		e.TicketTypes = append(e.TicketTypes, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &e, nil
}

func (r *EventRepo) List(ctx context.Context) ([]domain.Event, error) {
	const op = "postgresrepo.EventRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, name, date, created_at FROM events ORDER BY date`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.CreatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		index[e.ID] = len(events)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	ttRows, err := db.Query(ctx,
		`SELECT id, event_id, name, price, quota FROM ticket_types ORDER BY name`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer ttRows.Close()

	for ttRows.Next() {
		var tt domain.TicketType
		if err := ttRows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quota); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if i, ok := index[tt.EventID]; ok {
			events[i].TicketTypes = append(events[i].TicketTypes, tt)
		}
	}
	if err := ttRows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return events, nil
}

// Delete removes the event together with its ticket types, tickets and
// sequence counters. Run it inside a transaction so the cascade is
// all-or-none.
func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.EventRepo.Delete"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`DELETE FROM tickets WHERE event_id = $1`, id,
	); err != nil {
		return wrapDBErr(op, err)
	}

	if _, err := db.Exec(ctx,
		`DELETE FROM ticket_types WHERE event_id = $1`, id,
	); err != nil {
		return wrapDBErr(op, err)
	}

	if _, err := db.Exec(ctx,
		`DELETE FROM counters WHERE scope LIKE $1`, scopePrefix(id)+"%",
	); err != nil {
		return wrapDBErr(op, err)
	}

	tag, err := db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrNotFound)
	}

	return nil
}
