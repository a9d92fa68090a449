package ledger

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrOwnedRecordSource is returned if the owned records of a key can not be fetched from the ledger.
	ErrOwnedRecordSource = errors.New("owned record source error")

	// ErrBadRequest defines the "bad request" error.
	ErrBadRequest = errors.New("bad request")

	// ErrInternalServerError defines the "internal server error" error.
	ErrInternalServerError = errors.New("internal server error")

	// ErrNotFound defines the "not found" error.
	ErrNotFound = errors.New("not found")

	// ErrUnknownError defines the "unknown error" error.
	ErrUnknownError = errors.New("unknown error")

	// ErrLedgerUnavailable is returned while the circuit breaker rejects requests to a failing ledger.
	ErrLedgerUnavailable = errors.New("ledger is unavailable")
)
