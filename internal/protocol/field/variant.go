package field

import "errors"

// VariantSpec lists the alternatives a variant may hold. Read tries them in
// order and keeps the first that decodes.
type VariantSpec struct {
	Name    string
	Members []Field
	Display
}

type Variant struct {
	spec *VariantSpec
	idx  int
	cur  Field
}

func NewVariant(spec VariantSpec) *Variant {
	s := spec
	return &Variant{spec: &s, idx: -1}
}

func (f *Variant) isField()     {}
func (f *Variant) Name() string { return f.spec.Name }
func (f *Variant) Kind() Kind   { return KindVariant }

// Current returns the selected member index and field, or -1 and nil.
func (f *Variant) Current() (int, Field) {
	return f.idx, f.cur
}

// Select replaces the held member with a default alternative idx.
func (f *Variant) Select(idx int) (Field, bool) {
	if idx < 0 || idx >= len(f.spec.Members) {
		return nil, false
	}
	f.idx = idx
	f.cur = f.spec.Members[idx].Clone()
	return f.cur, true
}

func (f *Variant) Reset() {
	f.idx = -1
	f.cur = nil
}

func (f *Variant) Read(buf []byte) (int, error) {
	f.Reset()
	incomplete := false
	for i, alt := range f.spec.Members {
		cand := alt.Clone()
		n, err := cand.Read(buf)
		if err == nil {
			f.idx = i
			f.cur = cand
			return n, nil
		}
		if errors.Is(err, ErrIncompleteData) {
			incomplete = true
		}
	}
	if incomplete {
		return 0, ErrIncompleteData
	}
	return 0, ErrInvalidData
}

func (f *Variant) Write(dst []byte) []byte {
	if f.cur == nil {
		return dst
	}
	return f.cur.Write(dst)
}

func (f *Variant) Length() int {
	if f.cur == nil {
		return 0
	}
	return f.cur.Length()
}

func (f *Variant) MinLength() int {
	if len(f.spec.Members) == 0 {
		return 0
	}
	out := Unbounded
	for _, m := range f.spec.Members {
		out = min(out, m.MinLength())
	}
	return out
}

func (f *Variant) MaxLength() int {
	out := 0
	for _, m := range f.spec.Members {
		out = max(out, m.MaxLength())
	}
	return out
}

func (f *Variant) Valid() bool {
	return f.cur != nil && f.cur.Valid()
}

func (f *Variant) Refresh() bool {
	if f.cur == nil {
		return false
	}
	return f.cur.Refresh()
}

func (f *Variant) Clone() Field {
	cp := &Variant{spec: f.spec, idx: f.idx}
	if f.cur != nil {
		cp.cur = f.cur.Clone()
	}
	return cp
}

func (f *Variant) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindVariant)
	p.Members = membersProperties(f.spec.Members)
	return p
}
