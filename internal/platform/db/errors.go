package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// IsNoRows reports whether err means the query matched no row.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
