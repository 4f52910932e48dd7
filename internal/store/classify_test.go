package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thushan/llamadeck/internal/core/domain"
)

func TestClassify(t *testing.T) {
	const url = "http://localhost:8080/props"

	tests := []struct {
		err      error
		name     string
		expected string
	}{
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
		{
			name: "refused errno",
			err: &domain.NetworkError{URL: url, Err: &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED},
			}},
			expected: MsgConnectionRefused,
		},
		{
			name:     "refused marker",
			err:      errors.New("connect ECONNREFUSED 127.0.0.1:8080"),
			expected: MsgConnectionRefused,
		},
		{
			name:     "dns not found",
			err:      &domain.NetworkError{URL: url, Err: &net.DNSError{Name: "nope.invalid", Err: "no such host", IsNotFound: true}},
			expected: MsgHostNotFound,
		},
		{
			name:     "not found marker",
			err:      errors.New("getaddrinfo ENOTFOUND llama.local"),
			expected: MsgHostNotFound,
		},
		{
			name:     "deadline",
			err:      &domain.NetworkError{URL: url, Err: fmt.Errorf("request: %w", context.DeadlineExceeded)},
			expected: MsgTimeout,
		},
		{
			name:     "timeout marker",
			err:      errors.New("connect ETIMEDOUT"),
			expected: MsgTimeout,
		},
		{
			name:     "other network failure",
			err:      &domain.NetworkError{URL: url, Err: errors.New("EOF")},
			expected: MsgUnreachable,
		},
		{
			name:     "browser fetch failure",
			err:      errors.New("TypeError: Failed to fetch"),
			expected: MsgUnreachable,
		},
		{
			name:     "503",
			err:      &domain.HTTPStatusError{Op: "failed to fetch server props", StatusCode: 503},
			expected: MsgServiceUnavailable,
		},
		{
			name:     "500",
			err:      &domain.HTTPStatusError{Op: "failed to fetch server props", StatusCode: 500},
			expected: MsgServerError,
		},
		{
			name:     "404",
			err:      &domain.HTTPStatusError{Op: "failed to fetch server props", StatusCode: 404},
			expected: MsgEndpointNotFound,
		},
		{
			name:     "401",
			err:      &domain.HTTPStatusError{Op: "failed to fetch server props", StatusCode: 401},
			expected: MsgAccessDenied,
		},
		{
			name:     "status in message",
			err:      errors.New("Failed to fetch server props: 403"),
			expected: MsgAccessDenied,
		},
		{
			name:     "node fetch failure",
			err:      errors.New("TypeError: fetch failed"),
			expected: MsgUnreachable,
		},
		{
			name:     "502 is not mapped",
			err:      &domain.HTTPStatusError{Op: "failed to fetch server props", StatusCode: 502},
			expected: MsgFailedToConnect,
		},
		{
			name:     "format error quoting a status",
			err:      &domain.FormatError{Reason: "decode props", Err: errors.New(`readObjectStart: expect { but found 4, error found in #1 byte of ...|404 page not found|...`)},
			expected: MsgFailedToConnect,
		},
		{
			name:     "format error quoting a network marker",
			err:      &domain.FormatError{Reason: "decode props", Err: errors.New(`...|{"note":"ECONNREFUSED"|...`)},
			expected: MsgFailedToConnect,
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			expected: MsgFailedToConnect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestClassify_NetworkKindsWinOverStatus(t *testing.T) {
	// a refused connection mentioning 500 somewhere is still refused
	err := errors.New("connection refused after 500ms")
	assert.Equal(t, MsgConnectionRefused, Classify(err))
}
