package domain

import (
	"fmt"
	"net/http"
)

// NetworkError is a transport level failure, the request never got a response
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a response with a non-success status code
type HTTPStatusError struct {
	Op         string
	URL        string
	Status     string
	StatusCode int
}

func NewHTTPStatusError(op, url string, resp *http.Response) *HTTPStatusError {
	return &HTTPStatusError{
		Op:         op,
		URL:        url,
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
	}
}

func (e *HTTPStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: HTTP %s", e.Op, status)
}

// FormatError is a response body we could not make sense of
type FormatError struct {
	Err    error
	Reason string
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
