package vcenter

import "fmt"

// ConnError is a transport-level failure: connection refused, timeout, DNS
// or TLS problems. It wraps the underlying cause.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("Connection error: %v", e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// AuthError is a non-2xx response to the session creation request.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Error during API auth request: HTTP status %d : %s", e.Status, e.Body)
}

// TeardownError is a non-2xx response to the session deletion request.
type TeardownError struct {
	Status int
	Body   string
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("Error during token invalidation request: HTTP status %d : %s", e.Status, e.Body)
}

// APIError is an error-range response to a data query.
type APIError struct {
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error during API request to %s : HTTP status %d : %s", e.Path, e.Status, e.Body)
}

// DataError reports inventory data that violates an input precondition,
// such as a datastore with zero capacity.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("Data error: %s", e.Msg)
}
