package tumortype

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/oncology/clinic/internal/platform/apperror"
)

var (
	ErrNotFound       = errors.New("tumor type not found")
	ErrAlreadyDeleted = errors.New("tumor type already deleted")
)

func details(id int) map[string]string {
	return map[string]string{"tumorTypeId": strconv.Itoa(id)}
}

func NotFoundError(id int) error {
	return apperror.NotFound(ErrNotFound, fmt.Sprintf("Tumor Type %d not found", id), details(id))
}

func AlreadyDeletedError(id int) error {
	return apperror.BadRequest(ErrAlreadyDeleted, fmt.Sprintf("Tumor Type %d already deleted", id), details(id))
}
