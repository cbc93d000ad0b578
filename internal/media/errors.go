package media

import (
	"errors"
	"fmt"
)

// The conversation engine branches on exactly these two sentinels; every
// other backend failure is a generic BackendError.
var (
	// ErrConnection indicates a network or timeout failure reaching the
	// backend.
	ErrConnection = errors.New("media backend unreachable")

	// ErrAuth indicates the backend rejected the configured credentials.
	// Never retried automatically.
	ErrAuth = errors.New("media backend rejected credentials")
)

// BackendError wraps a backend failure that is neither a connection nor an
// auth problem.
type BackendError struct {
	Op      string // operation that failed ("search", "request", "details")
	Message string // backend-provided message, when available
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s failed: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s failed", e.Op)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
