package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateKey reports that a write collided with a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
