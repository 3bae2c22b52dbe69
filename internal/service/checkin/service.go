// Package checkin marks tickets as used at the door, either from the
// manual attendee list or from a scanned QR code. Mutations go through the
// local mirror first, so the door screen reflects them immediately; a
// failed write is rolled back and reported.
package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ingresso-go/internal/config"
	"ingresso-go/internal/domain"
	"ingresso-go/internal/export"
	"ingresso-go/internal/monitoring"
	"ingresso-go/internal/repository"
	postgresrepo "ingresso-go/internal/repository/postgres"
	redisrepo "ingresso-go/internal/repository/redis"
	"ingresso-go/internal/state"
)

type Service struct {
	store    *postgresrepo.Store
	mirror   *state.Mirror
	cache    *redisrepo.Cache
	feed     *redisrepo.ChangeFeed
	mode     config.CheckinMode
	qrSecret string
}

func New(
	store *postgresrepo.Store,
	mirror *state.Mirror,
	cache *redisrepo.Cache,
	feed *redisrepo.ChangeFeed,
	mode config.CheckinMode,
	qrSecret string,
) *Service {
	return &Service{
		store:    store,
		mirror:   mirror,
		cache:    cache,
		feed:     feed,
		mode:     mode,
		qrSecret: qrSecret,
	}
}

func (s *Service) lookup(ctx context.Context, ticketID uuid.UUID) (domain.Ticket, error) {
	if t, ok := s.mirror.Ticket(ticketID); ok {
		return t, nil
	}

	// mirror may still be warming up; fall back to the store and backfill
	t, err := s.store.Tickets().Get(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	_ = s.mirror.Apply(mustInsertChange(*t))
	return *t, nil
}

// CheckIn flips the ticket's checked-in flag. In confirm mode the flag is
// one-way; in toggle mode checking an already checked-in ticket undoes it.
func (s *Service) CheckIn(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	const op = "service.checkin.CheckIn"

	t, err := s.lookup(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.mode == config.CheckinConfirm && t.CheckedIn {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyCheckedIn)
	}

	target := true
	if s.mode == config.CheckinToggle {
		target = !t.CheckedIn
	}

	var persisted *domain.Ticket
	err = s.mirror.ApplyOptimistic(ctx,
		[]uuid.UUID{ticketID},
		func(t *domain.Ticket) { t.CheckedIn = target },
		func(ctx context.Context) error {
			updated, err := s.store.Tickets().SetCheckedIn(ctx, ticketID, target)
			if err != nil {
				return err
			}
			persisted = updated
			return nil
		},
	)
	if err != nil {
		monitoring.CheckInRecorded("failed")
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.feed.PublishUpdated(ctx, domain.TableTickets, *persisted)
	_ = s.cache.InvalidateEvent(ctx, persisted.EventID)
	monitoring.CheckInRecorded(checkInResult(target))

	return persisted, nil
}

// CheckInFromQR validates a scanned QR payload and checks the ticket in.
func (s *Service) CheckInFromQR(ctx context.Context, qrData string) (*domain.Ticket, error) {
	const op = "service.checkin.CheckInFromQR"

	ticketID, err := export.ParseQRPayload(qrData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQRCode)
	}

	t, err := s.lookup(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !export.VerifyQRPayload(t, qrData, s.qrSecret) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQRCode)
	}

	return s.CheckIn(ctx, ticketID)
}

// SetPaymentPaid marks an order's payment as settled. The payment fields
// are sale-level, so every ticket of the order changes together.
func (s *Service) SetPaymentPaid(ctx context.Context, eventID uuid.UUID, orderNumber, method string) ([]domain.Ticket, error) {
	const op = "service.checkin.SetPaymentPaid"

	stored, err := s.store.Tickets().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, 0)
	for _, t := range stored {
		if t.OrderNumber == orderNumber {
			ids = append(ids, t.ID)
			_ = s.mirror.Apply(mustInsertChange(t)) // backfill, idempotent
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}

	var updated []domain.Ticket
	err = s.mirror.ApplyOptimistic(ctx,
		ids,
		func(t *domain.Ticket) {
			t.PaymentStatus = domain.PaymentPaid
			t.PaymentMethod = method
		},
		func(ctx context.Context) error {
			tickets, err := s.store.Tickets().SetPaymentByOrder(ctx, eventID, orderNumber, domain.PaymentPaid, method)
			if err != nil {
				return err
			}
			updated = tickets
			return nil
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, t := range updated {
		_ = s.feed.PublishUpdated(ctx, domain.TableTickets, t)
	}
	_ = s.cache.InvalidateEvent(ctx, eventID)

	return updated, nil
}

func checkInResult(checkedIn bool) string {
	if checkedIn {
		return "checked_in"
	}
	return "undone"
}

func mustInsertChange(t domain.Ticket) domain.Change {
	// marshal of a domain.Ticket cannot fail
	b, _ := json.Marshal(t)
	return domain.Change{Action: domain.ChangeInsert, Table: domain.TableTickets, New: b}
}
