package field

// ArraySpec declares a list of elements created by Elem. The element count
// comes from CountPrefix, Fixed, a count forced by the owning message, or
// the rest of the buffer.
type ArraySpec struct {
	Name        string
	Elem        func() Field
	CountPrefix *IntSpec
	Fixed       int
	// MaxCount bounds the element count. A longer array is invalid and Write
	// emits only the first MaxCount elements.
	MaxCount int
	Display
}

type Array struct {
	spec   *ArraySpec
	prefix *Int
	elems  []Field
	forced int
}

func NewArray(spec ArraySpec) *Array {
	s := spec
	f := &Array{spec: &s, forced: -1}
	if s.CountPrefix != nil {
		f.prefix = NewInt(*s.CountPrefix)
	}
	if s.Fixed > 0 {
		f.Resize(s.Fixed)
	}
	return f
}

func (f *Array) isField()     {}
func (f *Array) Name() string { return f.spec.Name }
func (f *Array) Kind() Kind   { return KindArray }

func (f *Array) Len() int { return len(f.elems) }

func (f *Array) Elems() []Field { return f.elems }

func (f *Array) Elem(i int) Field { return f.elems[i] }

// Append adds a default element and returns it for editing.
func (f *Array) Append() Field {
	e := f.spec.Elem()
	f.elems = append(f.elems, e)
	return e
}

func (f *Array) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(f.elems) {
		f.elems = f.elems[:n]
		return
	}
	for len(f.elems) < n {
		f.elems = append(f.elems, f.spec.Elem())
	}
}

// ForceCount makes the next Read decode exactly n elements.
func (f *Array) ForceCount(n int) {
	f.forced = n
}

func (f *Array) Read(buf []byte) (int, error) {
	consumed := 0
	count := -1
	switch {
	case f.forced >= 0:
		count = f.forced
		f.forced = -1
	case f.prefix != nil:
		n, err := f.prefix.Read(buf)
		if err != nil {
			return n, err
		}
		consumed = n
		if count, err = f.prefix.count(); err != nil {
			return consumed, err
		}
	case f.spec.Fixed > 0:
		count = f.spec.Fixed
	}

	proto := f.spec.Elem()
	remaining := len(buf) - consumed
	if count >= 0 {
		minLen := proto.MinLength()
		if minLen == 0 && count > remaining {
			return consumed, ErrInvalidData
		}
		if mulLength(count, minLen) > remaining {
			return consumed, ErrIncompleteData
		}
	}

	elems := make([]Field, 0, min(max(count, 0), remaining+1))
	for count < 0 || len(elems) < count {
		if count < 0 && consumed >= len(buf) {
			break
		}
		e := proto.Clone()
		n, err := e.Read(buf[consumed:])
		consumed += n
		if err != nil {
			return consumed, err
		}
		if n == 0 && count < 0 {
			break
		}
		elems = append(elems, e)
	}
	f.elems = elems
	return consumed, nil
}

func (f *Array) Write(dst []byte) []byte {
	elems := f.elems[:f.writeCount()]
	if f.prefix != nil {
		f.prefix.SetUint(uint64(len(elems)))
		dst = f.prefix.Write(dst)
	}
	for _, e := range elems {
		dst = e.Write(dst)
	}
	return dst
}

// writeCount is the number of elements Write emits: all of them, clamped to
// MaxCount and to what the count prefix can hold.
func (f *Array) writeCount() int {
	n := len(f.elems)
	if f.spec.MaxCount > 0 {
		n = min(n, f.spec.MaxCount)
	}
	if f.prefix != nil && uint64(n) > f.prefix.countLimit() {
		n = int(f.prefix.countLimit())
	}
	return n
}

func (f *Array) Length() int {
	total := 0
	elems := f.elems[:f.writeCount()]
	if f.prefix != nil {
		p := f.prefix.Clone().(*Int)
		p.SetUint(uint64(len(elems)))
		total = p.Length()
	}
	for _, e := range elems {
		total = addLength(total, e.Length())
	}
	return total
}

func (f *Array) MinLength() int {
	total := 0
	if f.prefix != nil {
		total = f.prefix.MinLength()
	}
	if f.spec.Fixed > 0 {
		total = addLength(total, mulLength(f.spec.Fixed, f.spec.Elem().MinLength()))
	}
	return total
}

func (f *Array) MaxLength() int {
	total := 0
	if f.prefix != nil {
		total = f.prefix.MaxLength()
	}
	count := f.spec.Fixed
	if count == 0 {
		count = f.spec.MaxCount
	}
	if count == 0 {
		return Unbounded
	}
	return addLength(total, mulLength(count, f.spec.Elem().MaxLength()))
}

func (f *Array) Valid() bool {
	if f.prefix != nil && uint64(len(f.elems)) > f.prefix.countLimit() {
		return false
	}
	if f.spec.MaxCount > 0 && len(f.elems) > f.spec.MaxCount {
		return false
	}
	if f.spec.Fixed > 0 && len(f.elems) != f.spec.Fixed {
		return false
	}
	for _, e := range f.elems {
		if !e.Valid() {
			return false
		}
	}
	return true
}

func (f *Array) Refresh() bool {
	changed := false
	for _, e := range f.elems {
		if e.Refresh() {
			changed = true
		}
	}
	return changed
}

func (f *Array) Clone() Field {
	cp := &Array{spec: f.spec, forced: f.forced, elems: CloneAll(f.elems)}
	if f.prefix != nil {
		cp.prefix = f.prefix.Clone().(*Int)
	}
	return cp
}

func (f *Array) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindArray)
	p.Members = []Properties{f.spec.Elem().Properties()}
	return p
}
