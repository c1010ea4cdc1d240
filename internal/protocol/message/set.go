package message

import (
	"fmt"
	"strings"

	"github.com/danmuck/ccview/internal/protocol/field"
)

const transportPrefix = "transport."

// Set assigns the field at a dotted path from its text form. Transport
// fields are addressed as "transport.<name>".
func (m *Message) Set(path, text string) error {
	fields := m.Fields
	if rest, ok := strings.CutPrefix(path, transportPrefix); ok {
		fields, path = m.Transport, rest
	}
	f, ok := field.Lookup(fields, path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoField, path)
	}
	if err := field.Assign(f, text); err != nil {
		return fmt.Errorf("message: %s: %w", m.IDString(), err)
	}
	return nil
}

// SetAll applies every assignment in values.
func (m *Message) SetAll(values map[string]string) error {
	for path, text := range values {
		if err := m.Set(path, text); err != nil {
			return err
		}
	}
	return nil
}
