package field

import "fmt"

// Kind is the semantic tag of a field.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBitmask
	KindEnum
	KindString
	KindBitfield
	KindOptional
	KindBundle
	KindArray
	KindVariant
	KindUnknown
)

var kindNames = [...]string{
	KindInt:      "int",
	KindFloat:    "float",
	KindBitmask:  "bitmask",
	KindEnum:     "enum",
	KindString:   "string",
	KindBitfield: "bitfield",
	KindOptional: "optional",
	KindBundle:   "bundle",
	KindArray:    "array",
	KindVariant:  "variant",
	KindUnknown:  "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
