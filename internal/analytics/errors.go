package analytics

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Engine operations. Callers match them with errors.Is.
var (
	// ErrInvalidArgument marks a request that can never succeed as issued:
	// an unparseable date, an inverted range, an unknown granularity or status.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a bed that resolves by neither primary key nor code.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable wraps any failure of the underlying store.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}
