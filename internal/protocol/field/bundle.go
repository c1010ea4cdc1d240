package field

type BundleSpec struct {
	Name    string
	Members []Field
	Display
}

// Bundle is an ordered group of member fields serialized back to back.
type Bundle struct {
	spec    *BundleSpec
	members []Field
}

func NewBundle(spec BundleSpec) *Bundle {
	s := spec
	return &Bundle{spec: &s, members: CloneAll(s.Members)}
}

func (f *Bundle) isField()     {}
func (f *Bundle) Name() string { return f.spec.Name }
func (f *Bundle) Kind() Kind   { return KindBundle }

func (f *Bundle) Members() []Field { return f.members }

func (f *Bundle) Member(name string) (Field, bool) {
	return Find(f.members, name)
}

func (f *Bundle) Read(buf []byte) (int, error) {
	consumed := 0
	for _, m := range f.members {
		n, err := m.Read(buf[consumed:])
		consumed += n
		if err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}

func (f *Bundle) Write(dst []byte) []byte {
	for _, m := range f.members {
		dst = m.Write(dst)
	}
	return dst
}

func (f *Bundle) Length() int {
	total := 0
	for _, m := range f.members {
		total = addLength(total, m.Length())
	}
	return total
}

func (f *Bundle) MinLength() int {
	total := 0
	for _, m := range f.members {
		total = addLength(total, m.MinLength())
	}
	return total
}

func (f *Bundle) MaxLength() int {
	total := 0
	for _, m := range f.members {
		total = addLength(total, m.MaxLength())
	}
	return total
}

func (f *Bundle) Valid() bool {
	for _, m := range f.members {
		if !m.Valid() {
			return false
		}
	}
	return true
}

func (f *Bundle) Refresh() bool {
	changed := false
	for _, m := range f.members {
		if m.Refresh() {
			changed = true
		}
	}
	return changed
}

func (f *Bundle) Clone() Field {
	return &Bundle{spec: f.spec, members: CloneAll(f.members)}
}

func (f *Bundle) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindBundle)
	p.Members = membersProperties(f.members)
	return p
}
