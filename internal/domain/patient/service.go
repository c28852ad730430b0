package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/platform/cache"
	"github.com/oncology/clinic/internal/platform/events"
	"github.com/oncology/clinic/pkg/pagination"
)

const (
	EventCreated = "PatientCreated"
	EventUpdated = "PatientUpdated"
)

// CacheKeys builds the cache keys for patient responses.
var CacheKeys = cache.For("patients")

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
		logger:    logger.With().Str("service", "patient").Logger(),
	}
}

// CreatePatient persists a new patient. The status is always StatusActive.
func (s *Service) CreatePatient(ctx context.Context, req CreateRequest) (*Patient, error) {
	p := &Patient{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Status:    StatusActive,
	}
	if req.BirthDate != nil {
		p.BirthDate = *req.BirthDate
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.ID)
	if err := s.publish(ctx, EventCreated, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePatient applies the fields present in req. Setting Inactivo here is
// rejected so DisablePatient stays the only way to disable a patient.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	p, err := s.GetPatientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status == StatusInactive {
		return nil, StatusChangeError(id)
	}
	req.Apply(p)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.ID)
	if err := s.publish(ctx, EventUpdated, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFoundError(id)
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, f ListFilters) (*pagination.Page[*Patient], error) {
	return s.repo.List(ctx, f)
}

// DisablePatient moves a patient to StatusInactive. Disabling twice is an error.
func (s *Service) DisablePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.GetPatientByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == StatusInactive {
		return AlreadyDisabledError(id)
	}
	if err := s.repo.SetStatus(ctx, id, StatusInactive); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// invalidate never fails the calling mutation; errors are only logged.
func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	err := cache.Invalidate(ctx, s.cache, cache.Invalidation{
		Prefixes: []string{CacheKeys.ListPrefix()},
		Keys:     []string{CacheKeys.Detail(id)},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", id.String()).Msg("cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, name string, p *Patient) error {
	if err := s.publisher.Publish(ctx, name, p); err != nil {
		return fmt.Errorf("publish %s for patient %s: %w", name, p.ID, err)
	}
	s.logger.Debug().Str("event", name).Str("patient_id", p.ID.String()).Msg("event published")
	return nil
}
