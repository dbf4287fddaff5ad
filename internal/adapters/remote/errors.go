package remote

import "errors"

var (
	// ErrHTTPRequestFailed is returned when an HTTP request to the management API fails.
	ErrHTTPRequestFailed = errors.New("failed to send HTTP request")

	// ErrFailedToReadBody is returned when a response body from the management API cannot be read.
	ErrFailedToReadBody = errors.New("failed to read response body")

	// ErrAuthorizationFailed is returned when authentication with the management API fails.
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrUnexpectedStatus is returned when the management API answers with a non-2xx status code.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrSaveFailed is returned when a world save request fails.
	ErrSaveFailed = errors.New("failed to save world")

	// ErrShutdownRequestFailed is returned when a shutdown request fails.
	ErrShutdownRequestFailed = errors.New("failed to request shutdown")
)
