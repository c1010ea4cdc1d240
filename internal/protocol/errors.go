package protocol

import "errors"

var (
	ErrUnknownID         = errors.New("protocol: unknown message id")
	ErrDuplicateKey      = errors.New("protocol: message key used by two ids")
	ErrTransportMismatch = errors.New("protocol: transport fields do not match layout")
	ErrNoDefinitions     = errors.New("protocol: no message definitions")
	ErrMessageTooLarge   = errors.New("protocol: message does not fit the frame size")
)
