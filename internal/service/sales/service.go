package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ingresso-go/internal/aggregate"
	"ingresso-go/internal/domain"
	"ingresso-go/internal/monitoring"
	"ingresso-go/internal/numbering"
	"ingresso-go/internal/repository"
	postgresrepo "ingresso-go/internal/repository/postgres"
	redisrepo "ingresso-go/internal/repository/redis"
	"ingresso-go/internal/uow"
)

type Service struct {
	store *postgresrepo.Store
	uow   *uow.UoW
	cache *redisrepo.Cache
	feed  *redisrepo.ChangeFeed
	now   func() time.Time
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, feed *redisrepo.ChangeFeed) *Service {
	return &Service{
		store: store,
		uow:   uow.NewUoW(store),
		cache: cache,
		feed:  feed,
		now:   time.Now,
	}
}

type CreateInput struct {
	EventID       uuid.UUID
	CustomerName  string
	CustomerPhone string
	PaymentStatus domain.PaymentStatus
	PaymentMethod string
	Details       string
	Items         []numbering.Request
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return ErrCustomerNameRequired
	}
	if err := numbering.ValidateRequests(in.Items); err != nil {
		switch {
		case errors.Is(err, numbering.ErrEmptyBatch):
			return ErrEmptyCart
		case errors.Is(err, numbering.ErrNegativeQuantity):
			return ErrNegativeQuantity
		default:
			return err
		}
	}
	switch in.PaymentStatus {
	case "", domain.PaymentPaid, domain.PaymentPending:
	default:
		return ErrInvalidPaymentStatus
	}
	return nil
}

// Create runs one checkout: it reserves order and ticket sequences,
// mints every requested ticket and writes the whole batch in a single
// transaction. The sale either produces all of its tickets or none.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Sale, error) {
	const op = "service.sales.Create"

	start := s.now()

	if err := validateCreate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.store.Events().Get(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	types := make(map[uuid.UUID]domain.TicketType, len(event.TicketTypes))
	for _, tt := range event.TicketTypes {
		types[tt.ID] = tt
	}
	for _, item := range in.Items {
		if _, ok := types[item.TicketTypeID]; !ok {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownTicketType)
		}
	}

	status := in.PaymentStatus
	if status == "" {
		status = domain.PaymentPending
	}

	total := numbering.TotalQuantity(in.Items)
	year := start.Year()
	saleID := uuid.New()

	var tickets []domain.Ticket
	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		ticketRepo := s.store.Tickets().With(tx)
		counterRepo := s.store.Counters().With(tx)

		// quota must see the combined quantity per type, since a cart
		// may request the same type on more than one line
		for typeID, qty := range numbering.QuantityByType(in.Items) {
			tt := types[typeID]
			if tt.Quota == nil {
				continue
			}
			sold, err := ticketRepo.SoldCountByType(ctx, typeID)
			if err != nil {
				return err
			}
			if sold+qty > *tt.Quota {
				return ErrQuotaExceeded
			}
		}

		lastTicketSeq, err := counterRepo.Next(ctx, postgresrepo.TicketScope(in.EventID), int64(total))
		if err != nil {
			return err
		}
		orderSeq, err := counterRepo.Next(ctx, postgresrepo.OrderScope(in.EventID, year), 1)
		if err != nil {
			return err
		}

		batch := numbering.Batch{
			SaleID:        saleID,
			EventID:       in.EventID,
			Year:          year,
			BaseTicketSeq: lastTicketSeq - int64(total) + 1,
			OrderSeq:      orderSeq,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			CustomerPhone: strings.TrimSpace(in.CustomerPhone),
			PaymentStatus: status,
			PaymentMethod: in.PaymentMethod,
			Details:       in.Details,
			IssuedAt:      start,
		}

		_, tickets, err = numbering.Allocate(batch, in.Items)
		if err != nil {
			return err
		}

		if err := ticketRepo.InsertBatch(ctx, tickets); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			for _, t := range tickets {
				_ = s.feed.PublishInserted(ctx, domain.TableTickets, t)
			}
			_ = s.cache.InvalidateEvent(ctx, in.EventID)
			monitoring.SaleCreated(in.EventID.String(), len(tickets), s.now().Sub(start))
		})

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return nil, fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sale := aggregate.GroupTickets(tickets)[0]
	return &sale, nil
}
