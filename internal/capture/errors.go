package capture

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrValidation marks a request with a bad shape or a missing required field.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")

	ErrInvalidSymbology = errors.New("invalid symbology")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")

	ErrInsufficientInput = errors.New("at least 2 sessions are required for merging")
	ErrNoData            = errors.New("no barcodes found in selected sessions")

	// ErrTransactionFailure is a store conflict or I/O fault. Nothing was
	// applied and the caller may retry.
	ErrTransactionFailure = errors.New("transaction failure")
)

var domainErrors = []error{
	ErrValidation,
	ErrNotFound,
	ErrInvalidSymbology,
	ErrInvalidQuantity,
	ErrInsufficientInput,
	ErrNoData,
	ErrTransactionFailure,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isRetryable reports Postgres serialization failures and deadlocks.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
