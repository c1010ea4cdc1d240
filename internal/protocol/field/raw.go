package field

// RawSpec declares uninterpreted bytes. Fixed zero takes the rest of the
// buffer.
type RawSpec struct {
	Name  string
	Fixed int
	Display
}

// Raw holds bytes with no known structure.
type Raw struct {
	spec *RawSpec
	data []byte
}

func NewRaw(spec RawSpec) *Raw {
	s := spec
	f := &Raw{spec: &s}
	if s.Fixed > 0 {
		f.data = make([]byte, s.Fixed)
	}
	return f
}

func (f *Raw) isField()     {}
func (f *Raw) Name() string { return f.spec.Name }
func (f *Raw) Kind() Kind   { return KindUnknown }

func (f *Raw) Bytes() []byte { return f.data }

func (f *Raw) SetBytes(b []byte) {
	f.data = append([]byte(nil), b...)
}

func (f *Raw) Read(buf []byte) (int, error) {
	n := len(buf)
	if f.spec.Fixed > 0 {
		if n < f.spec.Fixed {
			return 0, ErrIncompleteData
		}
		n = f.spec.Fixed
	}
	f.data = append([]byte(nil), buf[:n]...)
	return n, nil
}

func (f *Raw) Write(dst []byte) []byte {
	if f.spec.Fixed > 0 {
		for i := 0; i < f.spec.Fixed; i++ {
			if i < len(f.data) {
				dst = append(dst, f.data[i])
			} else {
				dst = append(dst, 0)
			}
		}
		return dst
	}
	return append(dst, f.data...)
}

func (f *Raw) Length() int {
	if f.spec.Fixed > 0 {
		return f.spec.Fixed
	}
	return len(f.data)
}

func (f *Raw) MinLength() int { return f.spec.Fixed }

func (f *Raw) MaxLength() int {
	if f.spec.Fixed > 0 {
		return f.spec.Fixed
	}
	return Unbounded
}

func (f *Raw) Valid() bool {
	return f.spec.Fixed == 0 || len(f.data) == f.spec.Fixed
}

func (f *Raw) Refresh() bool { return false }

func (f *Raw) Clone() Field {
	return &Raw{spec: f.spec, data: append([]byte(nil), f.data...)}
}

func (f *Raw) Properties() Properties {
	return f.spec.Display.properties(f.spec.Name, KindUnknown)
}
