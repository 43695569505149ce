package graph

import "fmt"

// Write phases, used in WriteError.Phase.
const (
	PhaseClear       = "clear"
	PhaseUpsertNodes = "upsert nodes"
	PhaseUpsertEdges = "upsert edges"
)

// ConnectError means the graph store was unreachable. Retryable by a later
// run; nothing was written.
type ConnectError struct {
	URI string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to graph store %s: %v", e.URI, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError means the store rejected the configured credentials. Not
// retryable without operator intervention; nothing was written.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("graph store authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// WriteError means one of the transactional write phases failed. The run must
// be treated as failed; earlier phases may have committed.
type WriteError struct {
	Phase string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("graph store %s: %v", e.Phase, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
