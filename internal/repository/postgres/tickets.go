package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ingresso-go/internal/domain"
	"ingresso-go/internal/repository"
)

const ticketColumns = `id, event_id, ticket_type_id, sale_id, order_number,
	ticket_number, ticket_seq, customer_name, customer_phone, payment_status,
	payment_method, details, checked_in, issued_at`

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.EventID, &t.TicketTypeID, &t.SaleID, &t.OrderNumber,
		&t.TicketNumber, &t.TicketSeq, &t.CustomerName, &t.CustomerPhone,
		&t.PaymentStatus, &t.PaymentMethod, &t.Details, &t.CheckedIn, &t.IssuedAt,
	)
	return t, err
}

// InsertBatch writes every ticket of one sale in a single batch. Run it
// inside the sale transaction: a sale produces all of its tickets or none.
func (r *TicketRepo) InsertBatch(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgresrepo.TicketRepo.InsertBatch"

	db := r.handle()

	b := &pgx.Batch{}
	for _, t := range tickets {
		b.Queue(
			`INSERT INTO tickets (`+ticketColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			t.ID, t.EventID, t.TicketTypeID, t.SaleID, t.OrderNumber,
			t.TicketNumber, t.TicketSeq, t.CustomerName, t.CustomerPhone,
			t.PaymentStatus, t.PaymentMethod, t.Details, t.CheckedIn, t.IssuedAt,
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

func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Get"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// ListByEvent returns the event's tickets in issue order. The numeric
// ticket_seq is the order key; the formatted ticket number is display-only
// and sorts wrong once the sequence outgrows its zero padding.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListByEvent"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE event_id = $1 ORDER BY ticket_seq`,
		eventID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return tickets, nil
}

func (r *TicketRepo) SetCheckedIn(ctx context.Context, id uuid.UUID, checkedIn bool) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.SetCheckedIn"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`UPDATE tickets SET checked_in = $2 WHERE id = $1
		 RETURNING `+ticketColumns,
		id, checkedIn,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// SetPaymentByOrder updates the sale-level payment fields, which live
// denormalized on every ticket row of the order.
func (r *TicketRepo) SetPaymentByOrder(
	ctx context.Context,
	eventID uuid.UUID,
	orderNumber string,
	status domain.PaymentStatus,
	method string,
) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.SetPaymentByOrder"

	db := r.handle()

	rows, err := db.Query(ctx,
		`UPDATE tickets SET payment_status = $3, payment_method = $4
		 WHERE event_id = $1 AND order_number = $2
		 RETURNING `+ticketColumns,
		eventID, orderNumber, status, method,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}
	if len(tickets) == 0 {
		return nil, wrapDBErr(op, repository.ErrNotFound)
	}

	return tickets, nil
}

func (r *TicketRepo) SoldCountByType(ctx context.Context, ticketTypeID uuid.UUID) (int, error) {
	const op = "postgresrepo.TicketRepo.SoldCountByType"

	db := r.handle()

	var n int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE ticket_type_id = $1`,
		ticketTypeID,
	).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}
