package backend

import (
	"fmt"
)

// RequestError is a failed call: transport failure, timeout, open circuit
// or a non-2xx status. Message carries the service's own explanation when
// it sent one.
type RequestError struct {
	Op      string
	Status  int // 0 when no response arrived
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": request failed"
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage is the text shown inline for this failure.
func (e *RequestError) UserMessage() string { return e.Message }

// MalformedResponseError is a 2xx response whose body could not be used.
// It is shown like any other failed request.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// UserMessage is always empty so the caller's fallback text is shown.
func (e *MalformedResponseError) UserMessage() string { return "" }
