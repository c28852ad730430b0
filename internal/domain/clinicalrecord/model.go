package clinicalrecord

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/internal/platform/middleware"
	"github.com/oncology/clinic/pkg/date"
	"github.com/oncology/clinic/pkg/pagination"
)

type ClinicalRecord struct {
	ID                uuid.UUID `json:"id"`
	PatientID         uuid.UUID `json:"patientId"`
	TumorTypeID       int       `json:"tumorTypeId"`
	DiagnosisDate     date.Date `json:"diagnosisDate"`
	Stage             string    `json:"stage"`
	TreatmentProtocol string    `json:"treatmentProtocol"`
}

// Stored is a row as persisted, including its soft-delete flag.
type Stored struct {
	ClinicalRecord
	IsDeleted bool
}

type CreateRequest struct {
	PatientID         uuid.UUID  `json:"patientId" validate:"required"`
	TumorTypeID       int        `json:"tumorTypeId" validate:"required,gt=0"`
	DiagnosisDate     *date.Date `json:"diagnosisDate" validate:"required"`
	Stage             string     `json:"stage" validate:"required,max=50"`
	TreatmentProtocol string     `json:"treatmentProtocol" validate:"required"`
}

// UpdateRequest is the PUT /clinical-records/:id body. Nil fields are left unchanged.
type UpdateRequest struct {
	PatientID         *uuid.UUID `json:"patientId,omitempty"`
	TumorTypeID       *int       `json:"tumorTypeId,omitempty" validate:"omitempty,gt=0"`
	DiagnosisDate     *date.Date `json:"diagnosisDate,omitempty"`
	Stage             *string    `json:"stage,omitempty" validate:"omitempty,min=1,max=50"`
	TreatmentProtocol *string    `json:"treatmentProtocol,omitempty" validate:"omitempty,min=1"`
}

func (r UpdateRequest) Apply(rec *ClinicalRecord) {
	if r.PatientID != nil {
		rec.PatientID = *r.PatientID
	}
	if r.TumorTypeID != nil {
		rec.TumorTypeID = *r.TumorTypeID
	}
	if r.DiagnosisDate != nil {
		rec.DiagnosisDate = *r.DiagnosisDate
	}
	if r.Stage != nil {
		rec.Stage = *r.Stage
	}
	if r.TreatmentProtocol != nil {
		rec.TreatmentProtocol = *r.TreatmentProtocol
	}
}

// ListQuery holds the raw list filters bound from the query string.
type ListQuery struct {
	PatientID     *string `query:"patientId" validate:"omitempty,uuid"`
	TumorTypeID   *string `query:"tumorTypeId" validate:"omitempty,number"`
	Stage         *string `query:"stage" validate:"omitempty,min=1"`
	DiagnosisFrom *string `query:"diagnosisFrom" validate:"omitempty,datetime=2006-01-02"`
	DiagnosisTo   *string `query:"diagnosisTo" validate:"omitempty,datetime=2006-01-02"`
}

// ListFilters drives List. Zero values mean "no filter". Stage is a LIKE
// pattern; the diagnosis range is inclusive on both ends.
type ListFilters struct {
	pagination.Params
	PatientID     uuid.UUID
	TumorTypeID   int
	Stage         string
	DiagnosisFrom *date.Date
	DiagnosisTo   *date.Date
}

// Filters converts validated query values.
func (q ListQuery) Filters(p pagination.Params) (ListFilters, error) {
	f := ListFilters{Params: p}
	if q.PatientID != nil {
		id, err := uuid.Parse(*q.PatientID)
		if err != nil {
			return f, invalidFilter("patientId", "uuid", "patientId must be a valid UUID")
		}
		f.PatientID = id
	}
	if q.TumorTypeID != nil {
		id, err := strconv.Atoi(*q.TumorTypeID)
		if err != nil || id < 1 {
			return f, invalidFilter("tumorTypeId", "gt", "tumorTypeId must be a positive integer")
		}
		f.TumorTypeID = id
	}
	if q.Stage != nil {
		f.Stage = *q.Stage
	}
	for _, d := range []struct {
		raw  *string
		dst  **date.Date
		name string
	}{
		{q.DiagnosisFrom, &f.DiagnosisFrom, "diagnosisFrom"},
		{q.DiagnosisTo, &f.DiagnosisTo, "diagnosisTo"},
	} {
		if d.raw == nil {
			continue
		}
		parsed, err := date.Parse(*d.raw)
		if err != nil {
			return f, invalidFilter(d.name, "datetime", d.name+" must be a YYYY-MM-DD date")
		}
		*d.dst = &parsed
	}
	return f, nil
}

func invalidFilter(field, rule, msg string) error {
	return apperror.Validation("Validation error", []middleware.FieldViolation{{
		Field:   field,
		Rule:    rule,
		Message: msg,
	}})
}
