package field

// Mode is the presence state of an optional field.
type Mode uint8

const (
	// ModeTentative reads the inner field only when bytes remain.
	ModeTentative Mode = iota
	ModeExists
	ModeMissing
)

func (m Mode) String() string {
	switch m {
	case ModeExists:
		return "exists"
	case ModeMissing:
		return "missing"
	default:
		return "tentative"
	}
}

type OptionalSpec struct {
	Name  string
	Field Field
	Mode  Mode
	Display
}

type Optional struct {
	spec  *OptionalSpec
	inner Field
	mode  Mode
}

func NewOptional(spec OptionalSpec) *Optional {
	s := spec
	if s.Name == "" {
		s.Name = s.Field.Name()
	}
	return &Optional{spec: &s, inner: s.Field.Clone(), mode: s.Mode}
}

func (f *Optional) isField()     {}
func (f *Optional) Name() string { return f.spec.Name }
func (f *Optional) Kind() Kind   { return KindOptional }

func (f *Optional) Field() Field { return f.inner }

func (f *Optional) Mode() Mode { return f.mode }

func (f *Optional) SetMode(m Mode) { f.mode = m }

func (f *Optional) Exists() bool { return f.mode == ModeExists }

func (f *Optional) Read(buf []byte) (int, error) {
	switch f.mode {
	case ModeMissing:
		return 0, nil
	case ModeTentative:
		if len(buf) == 0 {
			f.mode = ModeMissing
			return 0, nil
		}
	}
	n, err := f.inner.Read(buf)
	if err != nil {
		return n, err
	}
	f.mode = ModeExists
	return n, nil
}

func (f *Optional) Write(dst []byte) []byte {
	if f.mode == ModeMissing {
		return dst
	}
	return f.inner.Write(dst)
}

func (f *Optional) Length() int {
	if f.mode == ModeMissing {
		return 0
	}
	return f.inner.Length()
}

func (f *Optional) MinLength() int {
	if f.mode == ModeExists {
		return f.inner.MinLength()
	}
	return 0
}

func (f *Optional) MaxLength() int {
	if f.mode == ModeMissing {
		return 0
	}
	return f.inner.MaxLength()
}

func (f *Optional) Valid() bool {
	if f.mode == ModeMissing {
		return true
	}
	return f.inner.Valid()
}

func (f *Optional) Refresh() bool {
	if f.mode == ModeMissing {
		return false
	}
	return f.inner.Refresh()
}

func (f *Optional) Clone() Field {
	return &Optional{spec: f.spec, inner: f.inner.Clone(), mode: f.mode}
}

func (f *Optional) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindOptional)
	p.Members = []Properties{f.inner.Properties()}
	return p
}
