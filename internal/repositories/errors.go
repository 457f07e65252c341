package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrDuplicateStudentID = errors.New("duplicate student id")
	ErrDuplicate          = errors.New("duplicate key")
	ErrForeignKey         = errors.New("foreign key violation")
	ErrConflict           = errors.New("state conflict")
)

// pq коды: 23505 unique_violation, 23503 foreign_key_violation
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrDuplicateEmail
		case "users_student_id_key":
			return ErrDuplicateStudentID
		}
		return ErrDuplicate
	case "23503":
		return ErrForeignKey
	}
	return err
}
