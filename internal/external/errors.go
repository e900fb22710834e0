package external

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// UpstreamError is an upstream response with status >= 400. The body is kept
// verbatim so it can be forwarded to the client unchanged.
type UpstreamError struct {
	Service     string
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

// ShapeError means an upstream payload decoded but lacked a required field
// or carried one of the wrong type.
type ShapeError struct {
	Service string
	Field   string
	Err     error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unexpected payload at %s: %v", e.Service, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: unexpected payload at %s", e.Service, e.Field)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// TransportError wraps a network failure or timeout talking to an upstream.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline rather than a refusal.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}
