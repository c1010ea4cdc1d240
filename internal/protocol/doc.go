// Package protocol turns byte buffers into messages and back.
//
// Ownership boundary:
// - field: value encodings
// - message: field tuples and definitions
// - frame: transport layout (sync, size, id, checksum)
// - protocol: registry and the stateful decode loop
//
// A Protocol is not safe for concurrent use. Each session owns its own
// instance and drives it from a single goroutine.
package protocol
