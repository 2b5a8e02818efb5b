package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no row matches the requested ID
var ErrNotFound = errors.New("record not found")

// mapNotFound converts pgx.ErrNoRows to ErrNotFound
func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
