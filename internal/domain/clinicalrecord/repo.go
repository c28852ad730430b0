package clinicalrecord

import (
	"context"

	"github.com/google/uuid"

	"github.com/oncology/clinic/pkg/pagination"
)

// Repository persists clinical records. Getters return nil, nil when no row
// matches; GetByID and List skip soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, rec *ClinicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error)
	GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*Stored, error)
	Update(ctx context.Context, rec *ClinicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilters) (*pagination.Page[*ClinicalRecord], error)
}
