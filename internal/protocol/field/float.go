package field

import "math"

type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type FloatSpecial struct {
	Value float64
	Name  string
}

// FloatSpec declares an IEEE-754 field. Width is 32 or 64.
type FloatSpec struct {
	Name     string
	Width    int
	Endian   Endian
	Default  float64
	Ranges   []FloatRange
	Specials []FloatSpecial
	Decimals int
	Display
}

type Float struct {
	spec *FloatSpec
	v    float64
}

func NewFloat(spec FloatSpec) *Float {
	s := spec
	if s.Width != 32 {
		s.Width = 64
	}
	f := &Float{spec: &s}
	f.SetValue(s.Default)
	return f
}

func (f *Float) isField()     {}
func (f *Float) Name() string { return f.spec.Name }
func (f *Float) Kind() Kind   { return KindFloat }

func (f *Float) Value() float64 { return f.v }

func (f *Float) SetValue(v float64) {
	if f.spec.Width == 32 {
		v = float64(float32(v))
	}
	f.v = v
}

// SpecialName matches exactly; NaN matches a NaN special.
func (f *Float) SpecialName(v float64) (string, bool) {
	for _, sp := range f.spec.Specials {
		if sp.Value == v || (math.IsNaN(sp.Value) && math.IsNaN(v)) {
			return sp.Name, true
		}
	}
	return "", false
}

func (f *Float) ValueName() (string, bool) {
	return f.SpecialName(f.v)
}

func (f *Float) HasSpecials() bool {
	return len(f.spec.Specials) > 0
}

func (f *Float) Read(buf []byte) (int, error) {
	n := f.spec.Width / 8
	if len(buf) < n {
		return 0, ErrIncompleteData
	}
	raw := getUint(buf, n, f.spec.Endian)
	if n == 4 {
		f.v = float64(math.Float32frombits(uint32(raw)))
	} else {
		f.v = math.Float64frombits(raw)
	}
	return n, nil
}

func (f *Float) Write(dst []byte) []byte {
	if f.spec.Width == 32 {
		return putUint(dst, uint64(math.Float32bits(float32(f.v))), 4, f.spec.Endian)
	}
	return putUint(dst, math.Float64bits(f.v), 8, f.spec.Endian)
}

func (f *Float) Length() int    { return f.spec.Width / 8 }
func (f *Float) MinLength() int { return f.Length() }
func (f *Float) MaxLength() int { return f.Length() }

func (f *Float) Valid() bool {
	if _, ok := f.ValueName(); ok {
		return true
	}
	if len(f.spec.Ranges) == 0 {
		return true
	}
	for _, r := range f.spec.Ranges {
		if r.Min <= f.v && f.v <= r.Max {
			return true
		}
	}
	return false
}

func (f *Float) Refresh() bool { return false }

func (f *Float) Clone() Field {
	cp := *f
	return &cp
}

func (f *Float) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindFloat)
	p.Decimals = f.spec.Decimals
	for _, sp := range f.spec.Specials {
		p.Specials = append(p.Specials, Special{Value: int64(sp.Value), Name: sp.Name})
	}
	return p
}
