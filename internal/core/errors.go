package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrMissingInput is returned when an ingestion request does not carry all
// three payloads. Detected before any mutation; nothing has changed.
var ErrMissingInput = errors.New("all three payloads are required: entities, transactions, timeseries")

// ErrNotFound is returned when an update or delete targets an identifier
// with no matching row (zero rows affected).
var ErrNotFound = errors.New("entity not found")

// Phase names the ingestion state in which a failure occurred.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseReplacing  Phase = "replacing"
	PhaseArchiving  Phase = "archiving"
	PhaseLoading    Phase = "loading"
)

// IngestError wraps a failure with the ingestion phase it occurred in.
// Failures in PhaseReplacing or later leave the store empty or partially
// reloaded; no automatic rollback of the truncate is performed.
type IngestError struct {
	Phase Phase
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Phase, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// IsReferentialViolation reports whether err is a foreign-key violation,
// i.e. a dependent row referenced a non-existent entity.
func IsReferentialViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// IsConnectionFailure reports whether err means the store was unreachable: a
// failed connection attempt or a SQLSTATE class 08 connection exception.
// Pool-acquire timeouts surface as context errors and are not classified
// here. No retry is attempted; retry policy belongs to the caller.
func IsConnectionFailure(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	// SQLSTATE class 08: connection exceptions.
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "08")
}
