package domain

import "fmt"

// RelayError is a failure that ends a relay with an error event.
type RelayError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// Event converts the failure into the terminal event sent to the client.
func (e *RelayError) Event() Event {
	return ErrorEvent(e.Code, e.Message)
}

// NewRelayError creates a RelayError.
func NewRelayError(code ErrorCode, message string, err error) *RelayError {
	return &RelayError{Code: code, Message: message, Err: err}
}
