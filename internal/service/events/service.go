package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ingresso-go/internal/domain"
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

type TicketTypeInput struct {
	Name  string
	Price decimal.Decimal
	Quota *int
}

type CreateInput struct {
	Name        string
	Date        time.Time
	TicketTypes []TicketTypeInput
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if in.Date.IsZero() {
		return ErrDateRequired
	}
	if len(in.TicketTypes) == 0 {
		return ErrNoTicketTypes
	}
	for _, tt := range in.TicketTypes {
		if strings.TrimSpace(tt.Name) == "" {
			return ErrTypeNameMissing
		}
		if !tt.Price.IsPositive() {
			return ErrInvalidPrice
		}
	}
	return nil
}

// Create validates and persists a new event with its ticket types. No
// partial effect: validation failures abort before any write.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Event, error) {
	const op = "service.events.Create"

	if err := validateCreate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := domain.Event{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Date:      in.Date,
		CreatedAt: s.now(),
	}
	for _, tt := range in.TicketTypes {
		event.TicketTypes = append(event.TicketTypes, domain.TicketType{
			ID:      uuid.New(),
			EventID: event.ID,
			Name:    strings.TrimSpace(tt.Name),
			Price:   tt.Price,
			Quota:   tt.Quota,
		})
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Events().With(tx).Create(ctx, event); err != nil {
			return err
		}
		after(func(ctx context.Context) {
			_ = s.feed.PublishInserted(ctx, domain.TableEvents, event)
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "service.events.Get"

	e, err := s.store.Events().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return e, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Event, error) {
	const op = "service.events.List"

	events, err := s.store.Events().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// Delete removes the event and cascades to its tickets in one
// transaction, so a listing after deletion can never surface orphan sales.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.events.Delete"

	event, err := s.store.Events().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Events().With(tx).Delete(ctx, id); err != nil {
			return err
		}
		after(func(ctx context.Context) {
			_ = s.feed.PublishDeleted(ctx, domain.TableEvents, event)
			_ = s.cache.InvalidateEvent(ctx, id)
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
