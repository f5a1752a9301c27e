package transport

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile      = errors.New("no file provided")
	ErrInvalidMode = errors.New("invalid mode")
)

// ServerError is a failure reported by the processing backend, either with a
// non-2xx status or with an error field in a 2xx body.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// TransportError covers failures on the client side of the exchange:
// network errors and responses that cannot be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
