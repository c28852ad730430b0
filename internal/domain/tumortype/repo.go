package tumortype

import (
	"context"

	"github.com/oncology/clinic/pkg/pagination"
)

// Repository persists tumor types. Getters return nil, nil when no row
// matches. GetByID and List skip soft-deleted rows.
type Repository interface {
	// Create stores t and assigns its ID.
	Create(ctx context.Context, t *TumorType) error
	GetByID(ctx context.Context, id int) (*TumorType, error)
	GetByIDIncludingDeleted(ctx context.Context, id int) (*Stored, error)
	Update(ctx context.Context, t *TumorType) error
	// Delete marks the row deleted.
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, f ListFilters) (*pagination.Page[*TumorType], error)
}
