package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FaultKind classifies a failed exchange with a backend service so callers can
// pick the right user-facing wording without inspecting transport details.
type FaultKind int

const (
	FaultUnknown FaultKind = iota
	FaultTimeout
	FaultServer
	FaultNotFound
	FaultClient
	FaultOffline
)

func (k FaultKind) String() string {
	switch k {
	case FaultTimeout:
		return "timeout"
	case FaultServer:
		return "server"
	case FaultNotFound:
		return "not_found"
	case FaultClient:
		return "client"
	case FaultOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// APIError is the single error type surfaced by the clients in this package.
type APIError struct {
	Kind    FaultKind
	Status  int    // HTTP status, 0 for transport-level faults
	Message string // server-provided message, may be empty
	Err     error  // underlying cause, may be nil
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fault (status %d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s fault: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s fault", e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyTransportError maps a transport-level failure onto the fault
// taxonomy. Timeouts (including context deadlines) beat connectivity checks.
func classifyTransportError(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: FaultTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: FaultTimeout, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{Kind: FaultOffline, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Connection refused/reset while dialing means the endpoint (or the
		// network) is unreachable.
		return &APIError{Kind: FaultOffline, Err: err}
	}
	return &APIError{Kind: FaultUnknown, Err: err}
}

// classifyStatus maps a non-2xx HTTP response onto the fault taxonomy.
func classifyStatus(status int, message string) *APIError {
	switch {
	case status == http.StatusNotFound:
		return &APIError{Kind: FaultNotFound, Status: status, Message: message}
	case status >= 500:
		return &APIError{Kind: FaultServer, Status: status, Message: message}
	case status >= 400:
		return &APIError{Kind: FaultClient, Status: status, Message: message}
	default:
		return &APIError{Kind: FaultUnknown, Status: status, Message: message}
	}
}
