package clinicalrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/oncology/clinic/internal/domain/patient"
	"github.com/oncology/clinic/internal/domain/tumortype"
	"github.com/oncology/clinic/internal/platform/cache"
	"github.com/oncology/clinic/internal/platform/events"
	"github.com/oncology/clinic/pkg/pagination"
)

const (
	EventCreated = "ClinicalRecordCreated"
	EventUpdated = "ClinicalRecordUpdated"
	EventDeleted = "ClinicalRecordDeleted"
)

// PatientScope is the cache scope of per-patient record lists.
const PatientScope = "patient"

var CacheKeys = cache.For("clinical-records")

// PatientLookup resolves a patient or fails with its NotFound error.
type PatientLookup interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// TumorTypeLookup resolves a live tumor type or fails with NotFound or AlreadyDeleted.
type TumorTypeLookup interface {
	GetTumorTypeByID(ctx context.Context, id int) (*tumortype.TumorType, error)
}

// DeletedPayload is the body of a ClinicalRecordDeleted event.
type DeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type Service struct {
	repo       Repository
	patients   PatientLookup
	tumorTypes TumorTypeLookup
	cache      cache.Cache
	publisher  events.Publisher
	logger     zerolog.Logger
}

func NewService(
	repo Repository,
	patients PatientLookup,
	tumorTypes TumorTypeLookup,
	c cache.Cache,
	publisher events.Publisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		tumorTypes: tumorTypes,
		cache:      c,
		publisher:  publisher,
		logger:     logger.With().Str("service", "clinicalrecord").Logger(),
	}
}

// CreateClinicalRecord validates both references before anything is written.
func (s *Service) CreateClinicalRecord(ctx context.Context, req CreateRequest) (*ClinicalRecord, error) {
	if err := s.checkReferences(ctx, &req.PatientID, &req.TumorTypeID); err != nil {
		return nil, err
	}

	rec := &ClinicalRecord{
		ID:                uuid.New(),
		PatientID:         req.PatientID,
		TumorTypeID:       req.TumorTypeID,
		Stage:             req.Stage,
		TreatmentProtocol: req.TreatmentProtocol,
	}
	if req.DiagnosisDate != nil {
		rec.DiagnosisDate = *req.DiagnosisDate
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.invalidate(ctx, rec.ID, rec.PatientID)
	if err := s.publish(ctx, EventCreated, rec.ID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateClinicalRecord re-validates only the references that change. When
// the record moves to another patient both patients' lists are invalidated.
func (s *Service) UpdateClinicalRecord(ctx context.Context, id uuid.UUID, req UpdateRequest) (*ClinicalRecord, error) {
	rec, err := s.GetClinicalRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousPatient := rec.PatientID

	var newPatient *uuid.UUID
	if req.PatientID != nil && *req.PatientID != rec.PatientID {
		newPatient = req.PatientID
	}
	var newTumorType *int
	if req.TumorTypeID != nil && *req.TumorTypeID != rec.TumorTypeID {
		newTumorType = req.TumorTypeID
	}
	if err := s.checkReferences(ctx, newPatient, newTumorType); err != nil {
		return nil, err
	}

	req.Apply(rec)
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.invalidate(ctx, rec.ID, previousPatient, rec.PatientID)
	if err := s.publish(ctx, EventUpdated, rec.ID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) GetClinicalRecordByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, NotFoundError(id)
	}
	return rec, nil
}

func (s *Service) ListClinicalRecords(ctx context.Context, f ListFilters) (*pagination.Page[*ClinicalRecord], error) {
	return s.repo.List(ctx, f)
}

// ListClinicalRecordsByPatient lists one patient's records. An unknown
// patient is reported as NotFound rather than an empty page.
func (s *Service) ListClinicalRecordsByPatient(ctx context.Context, patientID uuid.UUID, f ListFilters) (*pagination.Page[*ClinicalRecord], error) {
	if _, err := s.patients.GetPatientByID(ctx, patientID); err != nil {
		return nil, err
	}
	f.PatientID = patientID
	return s.repo.List(ctx, f)
}

func (s *Service) DeleteClinicalRecord(ctx context.Context, id uuid.UUID) error {
	stored, err := s.repo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}
	if stored == nil {
		return NotFoundError(id)
	}
	if stored.IsDeleted {
		return AlreadyDeletedError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id, stored.PatientID)
	return s.publish(ctx, EventDeleted, id, DeletedPayload{ID: id})
}

// checkReferences resolves the given patient and tumor type concurrently.
// Nil arguments are skipped. The first failure aborts both lookups.
func (s *Service) checkReferences(ctx context.Context, patientID *uuid.UUID, tumorTypeID *int) error {
	g, gctx := errgroup.WithContext(ctx)
	if patientID != nil {
		id := *patientID
		g.Go(func() error {
			p, err := s.patients.GetPatientByID(gctx, id)
			if err != nil {
				return err
			}
			if p.Status == patient.StatusInactive {
				return patient.InactiveError(id)
			}
			return nil
		})
	}
	if tumorTypeID != nil {
		id := *tumorTypeID
		g.Go(func() error {
			_, err := s.tumorTypes.GetTumorTypeByID(gctx, id)
			return err
		})
	}
	return g.Wait()
}

// invalidate evicts the global list, the record's detail entry and the
// record lists of every given patient. Failures are logged only.
func (s *Service) invalidate(ctx context.Context, id uuid.UUID, patientIDs ...uuid.UUID) {
	inv := cache.Invalidation{
		Prefixes: []string{CacheKeys.ListPrefix()},
		Keys:     []string{CacheKeys.Detail(id)},
	}
	for _, pid := range patientIDs {
		inv.Prefixes = append(inv.Prefixes, CacheKeys.ScopedPrefix(PatientScope, pid))
	}
	if err := cache.Invalidate(ctx, s.cache, inv); err != nil {
		s.logger.Error().Err(err).Str("clinical_record_id", id.String()).Msg("cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, name string, id uuid.UUID, payload interface{}) error {
	if err := s.publisher.Publish(ctx, name, payload); err != nil {
		return fmt.Errorf("publish %s for clinical record %s: %w", name, id, err)
	}
	s.logger.Debug().Str("event", name).Str("clinical_record_id", id.String()).Msg("event published")
	return nil
}
