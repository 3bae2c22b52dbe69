package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ingresso-go/internal/aggregate"
	"ingresso-go/internal/domain"
	"ingresso-go/internal/repository"
	postgresrepo "ingresso-go/internal/repository/postgres"
	redisrepo "ingresso-go/internal/repository/redis"
)

type Config struct {
	EventStatsTTL time.Duration
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
	now   func() time.Time
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventStatsTTL <= 0 {
		cfg.EventStatsTTL = 30 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ListSales rebuilds the event's sales by grouping its flat tickets on
// order number.
func (s *Service) ListSales(ctx context.Context, eventID uuid.UUID) ([]domain.Sale, error) {
	const op = "service.query.ListSales"

	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tickets, err := s.store.Tickets().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return aggregate.GroupTickets(tickets), nil
}

// ListTickets returns the event's flat ticket list, optionally filtered by
// the door-staff search term (customer name, order or ticket number).
func (s *Service) ListTickets(ctx context.Context, eventID uuid.UUID, term string) ([]domain.Ticket, error) {
	const op = "service.query.ListTickets"

	tickets, err := s.store.Tickets().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return aggregate.FilterTickets(tickets, term), nil
}

// Ticket fetches one ticket by id.
func (s *Service) Ticket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "service.query.Ticket"

	t, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// EventStats computes the dashboard figures, cached for a short TTL and
// invalidated on every write that touches the event.
func (s *Service) EventStats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error) {
	const op = "service.query.EventStats"

	key := redisrepo.KeyEventStats(eventID)

	stats, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.EventStatsTTL,
		func(ctx context.Context) (domain.EventStats, error) {
			event, err := s.store.Events().Get(ctx, eventID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.EventStats{}, ErrEventNotFound
				}
				return domain.EventStats{}, err
			}

			tickets, err := s.store.Tickets().ListByEvent(ctx, eventID)
			if err != nil {
				return domain.EventStats{}, err
			}

			return aggregate.ComputeEventStats(*event, aggregate.GroupTickets(tickets)), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &stats, nil
}

// Dashboard combines the cached stats with the countdown to the event,
// which depends on when it is asked and so stays out of the cache.
type Dashboard struct {
	domain.EventStats
	DaysRemaining int `json:"daysRemaining"`
}

func (s *Service) Dashboard(ctx context.Context, eventID uuid.UUID) (*Dashboard, error) {
	const op = "service.query.Dashboard"

	event, err := s.store.Events().Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := s.EventStats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		EventStats:    *stats,
		DaysRemaining: aggregate.DaysRemaining(*event, s.now()),
	}, nil
}
