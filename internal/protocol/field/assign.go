package field

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotAssignable = errors.New("field: value cannot be assigned from text")

// Assign sets f from its text form. Numbers accept any strconv base prefix
// and the names of special values. Raw fields take hex. An optional field
// becomes present, or missing for the text "missing".
func Assign(f Field, text string) error {
	text = strings.TrimSpace(text)
	switch t := f.(type) {
	case *Enum:
		v, err := parseNamed(text, t.Specials())
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
		t.SetValue(v)
		return nil
	case *Int:
		if t.spec.ScaleNum != t.spec.ScaleDen {
			for _, sp := range t.Specials() {
				if sp.Name == text {
					t.SetValue(sp.Value)
					return nil
				}
			}
			x, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrNotAssignable, f.Name(), err)
			}
			t.SetScaled(x)
			return nil
		}
		v, err := parseNamed(text, t.Specials())
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
		t.SetValue(v)
		return nil
	case *Float:
		for _, sp := range t.spec.Specials {
			if sp.Name == text {
				t.SetValue(sp.Value)
				return nil
			}
		}
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotAssignable, f.Name(), err)
		}
		t.SetValue(x)
		return nil
	case *Bitmask:
		u, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotAssignable, f.Name(), err)
		}
		return t.SetValue(u)
	case *Bitfield:
		u, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotAssignable, f.Name(), err)
		}
		t.SetValue(u)
		return nil
	case *String:
		t.SetValue(text)
		return nil
	case *Raw:
		b, err := hex.DecodeString(strings.ReplaceAll(text, " ", ""))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotAssignable, f.Name(), err)
		}
		t.SetBytes(b)
		return nil
	case *Optional:
		if text == ModeMissing.String() {
			t.SetMode(ModeMissing)
			return nil
		}
		if err := Assign(t.Field(), text); err != nil {
			return err
		}
		t.SetMode(ModeExists)
		return nil
	}
	return fmt.Errorf("%w: %s is a %s", ErrNotAssignable, f.Name(), f.Kind())
}

func parseNamed(text string, specials []Special) (int64, error) {
	for _, sp := range specials {
		if sp.Name == text {
			return sp.Value, nil
		}
	}
	if v, err := strconv.ParseInt(text, 0, 64); err == nil {
		return v, nil
	}
	u, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrNotAssignable, text)
	}
	return int64(u), nil
}

// Lookup resolves a dotted path through bundles, bitfields and optionals.
func Lookup(fields []Field, path string) (Field, bool) {
	head, rest, nested := strings.Cut(path, ".")
	f, ok := Find(fields, head)
	if !ok {
		return nil, false
	}
	if !nested {
		return f, true
	}
	if opt, isOpt := f.(*Optional); isOpt {
		f = opt.Field()
	}
	switch t := f.(type) {
	case *Bundle:
		return Lookup(t.Members(), rest)
	case *Bitfield:
		return Lookup(t.Members(), rest)
	}
	return nil, false
}
