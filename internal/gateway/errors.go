package gateway

import (
	"errors"
	"fmt"
)

// StatusError is returned when the gateway answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

// RemoteError carries an {"error": "..."} message from a 2xx response
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// IsGatewayError reports whether err came from the gateway (status, body
// error, transport or decoding) rather than from local validation.
func IsGatewayError(err error) bool {
	var statusErr *StatusError
	var remoteErr *RemoteError
	var callErr *CallError
	return errors.As(err, &statusErr) || errors.As(err, &remoteErr) || errors.As(err, &callErr)
}

// CallError wraps transport and decoding failures with the operation path
type CallError struct {
	Path string
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("gateway call %s failed: %v", e.Path, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
