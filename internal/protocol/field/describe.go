package field

import "encoding/hex"

// Value is a display snapshot of a field's current state.
type Value struct {
	Name    string  `json:"name"`
	Kind    Kind    `json:"kind"`
	Value   any     `json:"value,omitempty"`
	Special string  `json:"special,omitempty"`
	Valid   bool    `json:"valid"`
	Hex     string  `json:"hex"`
	Bits    []int   `json:"bits,omitempty"`
	Members []Value `json:"members,omitempty"`
}

// Describe renders f and its members.
func Describe(f Field) Value {
	v := Value{
		Name:  f.Name(),
		Kind:  f.Kind(),
		Valid: f.Valid(),
		Hex:   hex.EncodeToString(f.Write(nil)),
	}
	switch t := f.(type) {
	case *Enum:
		v.Value = t.Value()
		v.Special, _ = t.ValueName()
	case *Int:
		v.Value = t.Value()
		if t.spec.ScaleNum != t.spec.ScaleDen {
			v.Value = t.Scaled()
		}
		v.Special, _ = t.ValueName()
	case *Float:
		v.Value = t.Value()
		v.Special, _ = t.ValueName()
	case *Bitmask:
		v.Value = t.Value()
		v.Bits = setBits(t)
	case *Bitfield:
		v.Value = t.Value()
		v.Members = describeAll(t.Members())
	case *String:
		v.Value = t.Value()
	case *Raw:
		v.Value = hex.EncodeToString(t.Bytes())
	case *Optional:
		v.Value = t.Mode().String()
		if t.Mode() != ModeMissing {
			v.Members = []Value{Describe(t.Field())}
		}
	case *Bundle:
		v.Members = describeAll(t.Members())
	case *Array:
		v.Value = t.Len()
		v.Members = describeAll(t.Elems())
	case *Variant:
		if idx, cur := t.Current(); cur != nil {
			v.Value = idx
			v.Members = []Value{Describe(cur)}
		}
	}
	return v
}

func describeAll(fields []Field) []Value {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Value, len(fields))
	for i, f := range fields {
		out[i] = Describe(f)
	}
	return out
}

func setBits(b Bits) []int {
	var out []int
	for i := 0; i < b.BitIdxLimit(); i++ {
		if b.Bit(i) {
			out = append(out, i)
		}
	}
	return out
}
