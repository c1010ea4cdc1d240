package field

// Properties describes a field to display code. It mirrors the field's
// actual semantics: HasSpecials is true exactly when Specials is non-empty.
type Properties struct {
	Name     string       `json:"name"`
	Kind     Kind         `json:"kind"`
	Hidden   bool         `json:"hidden,omitempty"`
	ReadOnly bool         `json:"read_only,omitempty"`
	Specials []Special    `json:"specials,omitempty"`
	Bits     []string     `json:"bits,omitempty"`
	Range    *Range       `json:"range,omitempty"`
	Decimals int          `json:"decimals,omitempty"`
	Members  []Properties `json:"members,omitempty"`
}

func (p Properties) HasSpecials() bool {
	return len(p.Specials) > 0
}

// Display options shared by every spec.
type Display struct {
	// Hidden fields are serialized but not shown.
	Hidden   bool
	ReadOnly bool
}

func (d Display) properties(name string, kind Kind) Properties {
	return Properties{Name: name, Kind: kind, Hidden: d.Hidden, ReadOnly: d.ReadOnly}
}

func membersProperties(fields []Field) []Properties {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Properties, len(fields))
	for i, f := range fields {
		out[i] = f.Properties()
	}
	return out
}
