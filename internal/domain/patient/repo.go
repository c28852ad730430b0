package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/oncology/clinic/pkg/pagination"
)

// Repository persists patients. GetByID returns nil, nil when no row exists.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, f ListFilters) (*pagination.Page[*Patient], error)
}
