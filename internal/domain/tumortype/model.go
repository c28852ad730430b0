package tumortype

import "github.com/oncology/clinic/pkg/pagination"

type TumorType struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	SystemAffected string `json:"systemAffected"`
}

// Stored is a row as persisted, including its soft-delete flag.
type Stored struct {
	TumorType
	IsDeleted bool
}

type CreateRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	SystemAffected string `json:"systemAffected" validate:"required,max=255"`
}

// UpdateRequest is the PUT /tumor-types/:id body. Nil fields are left unchanged.
type UpdateRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	SystemAffected *string `json:"systemAffected,omitempty" validate:"omitempty,min=1,max=255"`
}

func (r UpdateRequest) Apply(t *TumorType) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.SystemAffected != nil {
		t.SystemAffected = *r.SystemAffected
	}
}

type ListQuery struct {
	Search         *string `query:"search" validate:"omitempty,min=1"`
	SystemAffected *string `query:"systemAffected" validate:"omitempty,min=1"`
}

// ListFilters drives List. Search is a case-insensitive substring of the
// name; SystemAffected a case-insensitive prefix.
type ListFilters struct {
	pagination.Params
	Search         string
	SystemAffected string
}

func (q ListQuery) Filters(p pagination.Params) ListFilters {
	f := ListFilters{Params: p}
	if q.Search != nil {
		f.Search = *q.Search
	}
	if q.SystemAffected != nil {
		f.SystemAffected = *q.SystemAffected
	}
	return f
}
