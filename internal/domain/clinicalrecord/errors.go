package clinicalrecord

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oncology/clinic/internal/platform/apperror"
)

var (
	ErrNotFound       = errors.New("clinical record not found")
	ErrAlreadyDeleted = errors.New("clinical record already deleted")
)

func details(id uuid.UUID) map[string]string {
	return map[string]string{"clinicalRecordId": id.String()}
}

func NotFoundError(id uuid.UUID) error {
	return apperror.NotFound(ErrNotFound, fmt.Sprintf("Clinical Record %s not found", id), details(id))
}

func AlreadyDeletedError(id uuid.UUID) error {
	return apperror.BadRequest(ErrAlreadyDeleted, fmt.Sprintf("Clinical Record %s already deleted", id), details(id))
}
