package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCodeUniqueViolation = "23505"

	constraintUsersEmail    = "users_email_key"
	constraintUsersUsername = "users_username_key"

	fieldEmail    = "email"
	fieldUsername = "username"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation
}

// uniqueViolationField names the users column a unique violation collided on.
func uniqueViolationField(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.ConstraintName {
	case constraintUsersEmail:
		return fieldEmail
	case constraintUsersUsername:
		return fieldUsername
	default:
		return ""
	}
}
