package automation

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the failure taxonomy.
var (
	ErrValidation = errors.New("validation failed")
	ErrNetwork    = errors.New("network failure")
	ErrHTTP       = errors.New("http failure")
	ErrDecode     = errors.New("decode failure")
	ErrRejected   = errors.New("backend rejected request")
)

// ValidationError reports client-side input that failed a validator. No
// request is sent when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NetworkError means the request never reached the server or no response
// came back (DNS, connection reset, timeout, cancellation).
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// HTTPError is a response outside the 2xx range.
type HTTPError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Endpoint, e.Status)
}

func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// DecodeError is a successful response whose body is not valid JSON or not
// the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// RejectionError is a 2xx response whose payload reports success=false. The
// backend message is kept verbatim.
type RejectionError struct {
	Operation string
	Message   string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected by backend", e.Operation)
	}
	return fmt.Sprintf("%s rejected by backend: %s", e.Operation, e.Message)
}

func (e *RejectionError) Is(target error) bool { return target == ErrRejected }

// Describe turns err into a short message for people rather than logs.
// Backend rejection messages are surfaced verbatim.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		rejected *RejectionError
		invalid  *ValidationError
		status   *HTTPError
	)
	switch {
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return rejected.Message
		}
		return rejected.Error()
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &status):
		return fmt.Sprintf("server returned status %d", status.Status)
	case errors.Is(err, ErrDecode):
		return "unexpected response from server"
	case errors.Is(err, ErrNetwork):
		return "cannot reach server"
	default:
		return err.Error()
	}
}
