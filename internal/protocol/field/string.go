package field

import "bytes"

// StringSpec declares a string field. Exactly one framing applies, in order
// of precedence: Prefix (byte count prefix), Fixed (zero padded), ZeroTerm,
// otherwise the string takes the rest of the buffer.
type StringSpec struct {
	Name     string
	Prefix   *IntSpec
	Fixed    int
	ZeroTerm bool
	MaxLen   int
	Default  string
	Display
}

type String struct {
	spec   *StringSpec
	prefix *Int
	v      string
}

func NewString(spec StringSpec) *String {
	s := spec
	f := &String{spec: &s, v: s.Default}
	if s.Prefix != nil {
		f.prefix = NewInt(*s.Prefix)
	}
	return f
}

func (f *String) isField()     {}
func (f *String) Name() string { return f.spec.Name }
func (f *String) Kind() Kind   { return KindString }

func (f *String) Value() string { return f.v }

func (f *String) SetValue(v string) { f.v = v }

func (f *String) Read(buf []byte) (int, error) {
	switch {
	case f.prefix != nil:
		n, err := f.prefix.Read(buf)
		if err != nil {
			return n, err
		}
		size, err := f.prefix.count()
		if err != nil {
			return n, err
		}
		if len(buf)-n < size {
			return n, ErrIncompleteData
		}
		f.v = string(buf[n : n+size])
		return n + size, nil
	case f.spec.Fixed > 0:
		if len(buf) < f.spec.Fixed {
			return 0, ErrIncompleteData
		}
		f.v = string(bytes.TrimRight(buf[:f.spec.Fixed], "\x00"))
		return f.spec.Fixed, nil
	case f.spec.ZeroTerm:
		idx := bytes.IndexByte(buf, 0)
		if idx < 0 {
			return 0, ErrIncompleteData
		}
		f.v = string(buf[:idx])
		return idx + 1, nil
	default:
		f.v = string(buf)
		return len(buf), nil
	}
}

func (f *String) Write(dst []byte) []byte {
	switch {
	case f.prefix != nil:
		size := f.prefix.setCount(len(f.v))
		dst = f.prefix.Write(dst)
		return append(dst, f.v[:size]...)
	case f.spec.Fixed > 0:
		v := f.v
		if len(v) > f.spec.Fixed {
			v = v[:f.spec.Fixed]
		}
		dst = append(dst, v...)
		for i := len(v); i < f.spec.Fixed; i++ {
			dst = append(dst, 0)
		}
		return dst
	case f.spec.ZeroTerm:
		dst = append(dst, f.v...)
		return append(dst, 0)
	default:
		return append(dst, f.v...)
	}
}

func (f *String) Length() int {
	switch {
	case f.prefix != nil:
		p := f.prefix.Clone().(*Int)
		size := p.setCount(len(f.v))
		return p.Length() + size
	case f.spec.Fixed > 0:
		return f.spec.Fixed
	case f.spec.ZeroTerm:
		return len(f.v) + 1
	default:
		return len(f.v)
	}
}

func (f *String) MinLength() int {
	switch {
	case f.prefix != nil:
		return f.prefix.MinLength()
	case f.spec.Fixed > 0:
		return f.spec.Fixed
	case f.spec.ZeroTerm:
		return 1
	default:
		return 0
	}
}

func (f *String) MaxLength() int {
	maxLen := Unbounded
	if f.spec.MaxLen > 0 {
		maxLen = f.spec.MaxLen
	}
	switch {
	case f.prefix != nil:
		if limit := f.prefix.countLimit(); uint64(maxLen) > limit {
			maxLen = int(limit)
		}
		return addLength(f.prefix.MaxLength(), maxLen)
	case f.spec.Fixed > 0:
		return f.spec.Fixed
	case f.spec.ZeroTerm:
		return addLength(maxLen, 1)
	default:
		return maxLen
	}
}

// Valid is false when the value is longer than MaxLen or than the prefix
// can count. Write truncates such a value to what the prefix carries.
func (f *String) Valid() bool {
	if f.prefix != nil && uint64(len(f.v)) > f.prefix.countLimit() {
		return false
	}
	return f.spec.MaxLen == 0 || len(f.v) <= f.spec.MaxLen
}

func (f *String) Refresh() bool { return false }

func (f *String) Clone() Field {
	cp := *f
	if f.prefix != nil {
		cp.prefix = f.prefix.Clone().(*Int)
	}
	return &cp
}

func (f *String) Properties() Properties {
	return f.spec.Display.properties(f.spec.Name, KindString)
}
