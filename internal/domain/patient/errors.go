package patient

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oncology/clinic/internal/platform/apperror"
)

var (
	ErrNotFound        = errors.New("patient not found")
	ErrAlreadyDisabled = errors.New("patient already disabled")
	ErrInactive        = errors.New("patient inactive")
	ErrStatusChange    = errors.New("patient status change not allowed")
)

func details(id uuid.UUID) map[string]string {
	return map[string]string{"patientId": id.String()}
}

func NotFoundError(id uuid.UUID) error {
	return apperror.NotFound(ErrNotFound, fmt.Sprintf("Patient %s not found", id), details(id))
}

func AlreadyDisabledError(id uuid.UUID) error {
	return apperror.BadRequest(ErrAlreadyDisabled, fmt.Sprintf("Patient %s already disabled", id), details(id))
}

// InactiveError rejects attaching new clinical data to an Inactivo patient.
func InactiveError(id uuid.UUID) error {
	return apperror.BadRequest(ErrInactive, fmt.Sprintf("Patient %s is inactive", id), details(id))
}

// StatusChangeError rejects an update that would set Inactivo directly.
func StatusChangeError(id uuid.UUID) error {
	return apperror.BadRequest(ErrStatusChange,
		fmt.Sprintf("Patient %s cannot be set to %s by update; use the disable operation", id, StatusInactive), details(id))
}
