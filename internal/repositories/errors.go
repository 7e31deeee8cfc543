package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// dateColumn renders a DATE column as YYYY-MM-DD text so it scans into *string.
func dateColumn(col string) string {
	return "to_char(" + col + ", 'YYYY-MM-DD')"
}
