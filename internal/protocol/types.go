package protocol

import "time"

// DataInfo is a raw buffer exchanged with the socket and filter layers.
// Props is opaque to the codec and copied onto every message decoded from
// the buffer.
type DataInfo struct {
	Timestamp time.Time
	Data      []byte
	Props     map[string]any
}

// Common DataInfo property keys set by transports.
const (
	PropFrom = "tcp.from"
	PropTo   = "tcp.to"
)

// UpdateStatus reports whether UpdateMessage changed a message.
type UpdateStatus int

const (
	NoChange UpdateStatus = iota
	Changed
)

func (s UpdateStatus) String() string {
	if s == Changed {
		return "changed"
	}
	return "no_change"
}
