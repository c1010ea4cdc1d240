package field

import "errors"

var (
	ErrIncompleteData = errors.New("field: incomplete data")
	ErrInvalidData    = errors.New("field: invalid data representation")
	ErrFixedValue     = errors.New("field: value is fixed")
	ErrBitIndex       = errors.New("field: bit index out of range")
)
