package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStoreUnavailable wraps connection failures and timeouts.
	ErrStoreUnavailable = errors.New("store unavailable")
)

const (
	pgUniqueViolation       = "23505"
	pgInvalidTextRepr       = "22P02"
	pgClassConnectionPrefix = "08"
)

// classify maps driver errors onto the repository error set.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgErr.Code == pgInvalidTextRepr:
			// malformed uuid in a lookup
			return ErrNotFound
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgClassConnectionPrefix:
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
