package store

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/thushan/llamadeck/internal/core/domain"
)

// User facing messages, the UI shows these instead of raw errors
const (
	MsgUnreachable        = "Server is not running or unreachable"
	MsgConnectionRefused  = "Connection refused - server may be offline"
	MsgHostNotFound       = "Server not found - check server address"
	MsgTimeout            = "Request timed out"
	MsgServiceUnavailable = "Server temporarily unavailable"
	MsgServerError        = "Server error - check server logs"
	MsgEndpointNotFound   = "Server endpoint not found"
	MsgAccessDenied       = "Access denied"
	MsgFailedToConnect    = "Failed to connect to server"
)

// Classify maps a fetch failure onto the fixed message vocabulary. Typed
// errors are checked first, then the message is searched for the same
// markers a browser or node runtime would produce.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	// a format error quotes the response body, its text proves nothing
	var formatErr *domain.FormatError
	if errors.As(err, &formatErr) {
		msg = ""
	}

	switch {
	case isConnectionRefused(err, msg):
		return MsgConnectionRefused
	case isHostNotFound(err, msg):
		return MsgHostNotFound
	case isTimeout(err, msg):
		return MsgTimeout
	case isTransportFailure(err, msg):
		return MsgUnreachable
	}

	switch statusCode(err, msg) {
	case 503:
		return MsgServiceUnavailable
	case 500:
		return MsgServerError
	case 404:
		return MsgEndpointNotFound
	case 401, 403:
		return MsgAccessDenied
	}

	return MsgFailedToConnect
}

func isConnectionRefused(err error, msg string) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(msg, "ECONNREFUSED") ||
		strings.Contains(msg, "connection refused")
}

func isHostNotFound(err error, msg string) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}
	return strings.Contains(msg, "ENOTFOUND") || strings.Contains(msg, "no such host")
}

func isTimeout(err error, msg string) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(msg, "ETIMEDOUT")
}

// isTransportFailure matches our own NetworkError and the runtime
// TypeError a JS client reports, e.g. "TypeError: Failed to fetch"
func isTransportFailure(err error, msg string) bool {
	var networkErr *domain.NetworkError
	if errors.As(err, &networkErr) {
		return true
	}
	return strings.Contains(msg, "TypeError") && strings.Contains(msg, "fetch")
}

// statusCode prefers the typed status. The substring fallback keeps errors
// from other PropsService implementations classifiable.
func statusCode(err error, msg string) int {
	var statusErr *domain.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	for _, code := range []struct {
		marker string
		code   int
	}{
		{"503", 503},
		{"500", 500},
		{"404", 404},
		{"403", 403},
		{"401", 401},
	} {
		if strings.Contains(msg, code.marker) {
			return code.code
		}
	}
	return 0
}
