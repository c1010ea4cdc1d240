package message

import (
	"errors"
	"fmt"
)

var ErrNoField = errors.New("message: no such field")

// ReadError reports the payload field that stopped a message read.
type ReadError struct {
	Message    string
	FieldIndex int
	Field      string
	// Consumed counts bytes taken by the fields read before the failure plus
	// any partial consumption of the failing field.
	Consumed int
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("message: %s field %d (%s): %v", e.Message, e.FieldIndex, e.Field, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
