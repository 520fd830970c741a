package types

import (
	"errors"
	"fmt"
)

// ErrBlocked means the source actively denied automated access. It is never
// retried within a run; retrying only raises detection risk.
var ErrBlocked = errors.New("source blocked automated access")

// NetworkError wraps transient connectivity failures. The orchestrator may
// retry these a bounded number of times with backoff.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error during %s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the page structure no longer matches the adapter's
// extraction rules.
type ParseError struct {
	Source string
	Detail string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: parse error: %s", e.Source, e.Detail) }
