package patient

import (
	"github.com/google/uuid"

	"github.com/oncology/clinic/pkg/date"
	"github.com/oncology/clinic/pkg/pagination"
)

type Status string

const (
	StatusActive   Status = "Activo"
	StatusFollowUp Status = "Seguimiento"
	StatusInactive Status = "Inactivo"
)

type Gender string

const (
	GenderMale        Gender = "MASCULINO"
	GenderFemale      Gender = "FEMENINO"
	GenderOther       Gender = "OTRO"
	GenderUnspecified Gender = "NO_ESPECIFICADO"
)

type Patient struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate date.Date `json:"birthDate"`
	Gender    Gender    `json:"gender"`
	Status    Status    `json:"status"`
}

// CreateRequest is the POST /patients body. Status is accepted for
// compatibility but creation always yields StatusActive.
type CreateRequest struct {
	FirstName string     `json:"firstName" validate:"required,max=255"`
	LastName  string     `json:"lastName" validate:"required,max=255"`
	BirthDate *date.Date `json:"birthDate" validate:"required"`
	Gender    Gender     `json:"gender" validate:"required,oneof=MASCULINO FEMENINO OTRO NO_ESPECIFICADO"`
	Status    *Status    `json:"status,omitempty" validate:"omitempty,oneof=Activo Seguimiento Inactivo"`
}

// UpdateRequest is the PUT /patients/:id body. Nil fields are left unchanged.
type UpdateRequest struct {
	FirstName *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=255"`
	LastName  *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=255"`
	BirthDate *date.Date `json:"birthDate,omitempty"`
	Gender    *Gender    `json:"gender,omitempty" validate:"omitempty,oneof=MASCULINO FEMENINO OTRO NO_ESPECIFICADO"`
	// Status may move between Activo and Seguimiento; Inactivo is reached
	// only through DisablePatient.
	Status *Status `json:"status,omitempty" validate:"omitempty,oneof=Activo Seguimiento"`
}

// Apply overwrites the fields present in r.
func (r UpdateRequest) Apply(p *Patient) {
	if r.FirstName != nil {
		p.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		p.LastName = *r.LastName
	}
	if r.BirthDate != nil {
		p.BirthDate = *r.BirthDate
	}
	if r.Gender != nil {
		p.Gender = *r.Gender
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
}

// ListQuery holds the raw list filters bound from the query string.
type ListQuery struct {
	Search *string `query:"search" validate:"omitempty,min=1"`
	Status *string `query:"status" validate:"omitempty,oneof=Activo Seguimiento Inactivo"`
	Gender *string `query:"gender" validate:"omitempty,oneof=MASCULINO FEMENINO OTRO NO_ESPECIFICADO"`
}

// ListFilters drives List. An empty Status means Activo and Seguimiento.
type ListFilters struct {
	pagination.Params
	Search string
	Status Status
	Gender Gender
}

// Filters converts validated query values.
func (q ListQuery) Filters(p pagination.Params) ListFilters {
	f := ListFilters{Params: p}
	if q.Search != nil {
		f.Search = *q.Search
	}
	if q.Status != nil {
		f.Status = Status(*q.Status)
	}
	if q.Gender != nil {
		f.Gender = Gender(*q.Gender)
	}
	return f
}

// DefaultListStatuses are shown when no status filter is given.
var DefaultListStatuses = []Status{StatusActive, StatusFollowUp}

// Statuses returns the statuses a listing should include.
func (f ListFilters) Statuses() []Status {
	if f.Status != "" {
		return []Status{f.Status}
	}
	return DefaultListStatuses
}
