package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrUnavailable marks connection-level failures: the model server could not
// be reached at all (refused, timed out, DNS). These are always retryable and
// never mean the server rejected the request.
var ErrUnavailable = errors.New("model server unavailable")

// APIError is an explicit error payload returned by the model server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model server error (status %d): %s", e.Status, e.Message)
}

// IsRetryable reports whether a failed call is worth retrying. Connection
// failures always are; server payload errors only for rate limiting and
// server-side faults. The engine performs no automatic retry — the caller
// decides when to resubmit.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == 429 || apiErr.Status >= 500
	}
	return false
}

// classifyTransport maps connection-level failures to ErrUnavailable. Other
// errors pass through unchanged so adapters can map their SDK error types.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	var opErr *net.OpError
	var urlErr *url.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, context.DeadlineExceeded),
		os.IsTimeout(err),
		errors.As(err, &opErr),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.As(err, &urlErr):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
