package tumortype

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/platform/cache"
	"github.com/oncology/clinic/internal/platform/events"
	"github.com/oncology/clinic/pkg/pagination"
)

const (
	EventCreated = "TumorTypeCreated"
	EventUpdated = "TumorTypeUpdated"
	EventDeleted = "TumorTypeDeleted"
)

var CacheKeys = cache.For("tumor-types")

// DeletedPayload is the body of a TumorTypeDeleted event.
type DeletedPayload struct {
	ID int `json:"id"`
}

type Service struct {
	repo      Repository
	cache     cache.Cache
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewService(repo Repository, c cache.Cache, publisher events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		logger:    logger.With().Str("service", "tumortype").Logger(),
	}
}

func (s *Service) CreateTumorType(ctx context.Context, req CreateRequest) (*TumorType, error) {
	t := &TumorType{Name: req.Name, SystemAffected: req.SystemAffected}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, t.ID)
	if err := s.publish(ctx, EventCreated, t.ID, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTumorType(ctx context.Context, id int, req UpdateRequest) (*TumorType, error) {
	t, err := s.GetTumorTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(t)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	if err := s.publish(ctx, EventUpdated, id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTumorTypeByID distinguishes a missing row (NotFound) from a
// soft-deleted one (AlreadyDeleted).
func (s *Service) GetTumorTypeByID(ctx context.Context, id int) (*TumorType, error) {
	stored, err := s.repo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NotFoundError(id)
	}
	if stored.IsDeleted {
		return nil, AlreadyDeletedError(id)
	}
	t := stored.TumorType
	return &t, nil
}

func (s *Service) ListTumorTypes(ctx context.Context, f ListFilters) (*pagination.Page[*TumorType], error) {
	return s.repo.List(ctx, f)
}

func (s *Service) DeleteTumorType(ctx context.Context, id int) error {
	if _, err := s.GetTumorTypeByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return s.publish(ctx, EventDeleted, id, DeletedPayload{ID: id})
}

func (s *Service) invalidate(ctx context.Context, id int) {
	err := cache.Invalidate(ctx, s.cache, cache.Invalidation{
		Prefixes: []string{CacheKeys.ListPrefix()},
		Keys:     []string{CacheKeys.Detail(id)},
	})
	if err != nil {
		s.logger.Error().Err(err).Int("tumor_type_id", id).Msg("cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, name string, id int, payload interface{}) error {
	if err := s.publisher.Publish(ctx, name, payload); err != nil {
		return fmt.Errorf("publish %s for tumor type %d: %w", name, id, err)
	}
	s.logger.Debug().Str("event", name).Int("tumor_type_id", id).Msg("event published")
	return nil
}
