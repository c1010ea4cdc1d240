package field

// EnumSpec declares an enumeration: integer storage with a closed set of
// named values.
type EnumSpec struct {
	Name          string
	Type          IntType
	Endian        Endian
	Length        int
	MinVarLength  int
	MaxVarLength  int
	Default       int64
	Values        []Special
	FailOnInvalid bool
	Display
}

// Enum is valid only while it holds one of its named values.
type Enum struct {
	Int
}

func NewEnum(spec EnumSpec) *Enum {
	values := append([]Special(nil), spec.Values...)
	in := NewInt(IntSpec{
		Name:          spec.Name,
		Type:          spec.Type,
		Endian:        spec.Endian,
		Length:        spec.Length,
		MinVarLength:  spec.MinVarLength,
		MaxVarLength:  spec.MaxVarLength,
		Default:       spec.Default,
		Specials:      values,
		FailOnInvalid: spec.FailOnInvalid,
		Validator: func(v int64) bool {
			for _, sp := range values {
				if sp.Value == v {
					return true
				}
			}
			return false
		},
		Display: spec.Display,
	})
	return &Enum{Int: *in}
}

func (f *Enum) Kind() Kind { return KindEnum }

func (f *Enum) Clone() Field {
	cp := *f
	return &cp
}

func (f *Enum) Properties() Properties {
	p := f.Int.Properties()
	p.Kind = KindEnum
	return p
}
