package demo

import (
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/protocol/message"
)

func intValues() *message.Definition {
	return &message.Definition{
		ID:        IDIntValues,
		Key:       "IntValues",
		Name:      "IntValues",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewInt(field.IntSpec{
					Name:     "field1",
					Type:     field.Uint16,
					Ranges:   []field.Range{{Min: 0, Max: 10}},
					Specials: []field.Special{{Value: 1, Name: "S1"}, {Value: 5, Name: "S2"}},
				}),
				// 3-byte signed value.
				field.NewInt(field.IntSpec{Name: "field2", Type: field.Int32, Length: 3}),
				field.NewInt(field.IntSpec{
					Name:         "field3",
					Type:         field.Uint32,
					MinVarLength: 1,
					MaxVarLength: 4,
					Specials:     []field.Special{{Value: 100, Name: "S1"}, {Value: 500, Name: "S2"}},
				}),
				// Year as one byte relative to 2000.
				field.NewInt(field.IntSpec{
					Name:         "field4",
					Type:         field.Int16,
					Length:       1,
					NoSignExtend: true,
					Offset:       -2000,
					Default:      2016,
					Ranges:       []field.Range{{Min: 2000, Max: 2255}},
				}),
				field.NewInt(field.IntSpec{
					Name:     "field5",
					Type:     field.Int64,
					Length:   6,
					Ranges:   []field.Range{{Min: -0x800000000000, Max: 0x7fffffffffff}},
					Specials: []field.Special{{Value: 0xffffff, Name: "S1"}, {Value: 0xffffffffffff, Name: "S2"}},
				}),
				field.NewInt(field.IntSpec{Name: "field6", Type: field.Uint64}),
			}
		},
	}
}

func enumValues() *message.Definition {
	return &message.Definition{
		ID:        IDEnumValues,
		Key:       "EnumValues",
		Name:      "EnumValues",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewEnum(field.EnumSpec{
					Name:   "field1",
					Type:   field.Uint8,
					Values: []field.Special{{Value: 0, Name: "V1"}, {Value: 1, Name: "V2"}, {Value: 2, Name: "V3"}},
				}),
				field.NewEnum(field.EnumSpec{
					Name:    "field2",
					Type:    field.Int16,
					Default: -5,
					Values: []field.Special{
						{Value: -5, Name: "V1"},
						{Value: 100, Name: "V2"},
						{Value: 130, Name: "V3"},
						{Value: 1028, Name: "V4"},
					},
				}),
				field.NewEnum(field.EnumSpec{
					Name:         "field3",
					Type:         field.Uint16,
					MinVarLength: 1,
					MaxVarLength: 2,
					Values:       []field.Special{{Value: 0, Name: "V1"}, {Value: 128, Name: "V2"}, {Value: 0x3fff, Name: "V3"}},
				}),
			}
		},
	}
}

func bitmaskValues() *message.Definition {
	return &message.Definition{
		ID:        IDBitmaskValues,
		Key:       "BitmaskValues",
		Name:      "BitmaskValues",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewBitmask(field.BitmaskSpec{
					Name:     "field1",
					Length:   1,
					BitNames: []string{"bit0", "bit1", "bit2"},
					Reserved: 0xf8,
				}),
				field.NewBitmask(field.BitmaskSpec{
					Name:     "field2",
					Length:   2,
					BitNames: []string{"low", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "high"},
				}),
			}
		},
	}
}

func bitfields() *message.Definition {
	return &message.Definition{
		ID:        IDBitfields,
		Key:       "Bitfields",
		Name:      "Bitfields",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewBitfield(field.BitfieldSpec{
					Name:   "field1",
					Length: 2,
					Members: []field.BitMember{
						{Field: field.NewInt(field.IntSpec{Name: "mem1", Type: field.Uint8, Ranges: []field.Range{{Min: 0, Max: 9}}}), Bits: 4},
						{Field: field.NewBitmask(field.BitmaskSpec{Name: "mem2", Length: 1, BitNames: []string{"b0", "b1", "b2"}}), Bits: 3},
						{Field: field.NewEnum(field.EnumSpec{
							Name:   "mem3",
							Type:   field.Uint8,
							Values: []field.Special{{Value: 0, Name: "V1"}, {Value: 1, Name: "V2"}, {Value: 2, Name: "V3"}},
						}), Bits: 3},
						{Field: field.NewInt(field.IntSpec{Name: "mem4", Type: field.Uint8}), Bits: 6},
					},
				}),
			}
		},
	}
}

func stringsMsg() *message.Definition {
	return &message.Definition{
		ID:        IDStrings,
		Key:       "Strings",
		Name:      "Strings",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewString(field.StringSpec{Name: "field1", Prefix: &field.IntSpec{Name: "length", Type: field.Uint8}}),
				field.NewString(field.StringSpec{Name: "field2", ZeroTerm: true, MaxLen: 255}),
				field.NewString(field.StringSpec{Name: "field3", Fixed: 6}),
			}
		},
	}
}

// lists: field3 carries its element count in the separate field2Count field.
func lists() *message.Definition {
	return &message.Definition{
		ID:        IDLists,
		Key:       "Lists",
		Name:      "Lists",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewArray(field.ArraySpec{
					Name:        "field1",
					CountPrefix: &field.IntSpec{Name: "count", Type: field.Uint8},
					Elem:        func() field.Field { return field.NewInt(field.IntSpec{Name: "elem", Type: field.Uint32}) },
				}),
				field.NewArray(field.ArraySpec{
					Name:  "field2",
					Fixed: 3,
					Elem:  func() field.Field { return field.NewInt(field.IntSpec{Name: "elem", Type: field.Int16}) },
				}),
				field.NewInt(field.IntSpec{Name: "field3Count", Type: field.Uint8, Display: field.Display{ReadOnly: true}}),
				field.NewArray(field.ArraySpec{
					Name:     "field3",
					MaxCount: 255,
					Elem: func() field.Field {
						return field.NewBundle(field.BundleSpec{
							Name: "entry",
							Members: []field.Field{
								field.NewInt(field.IntSpec{Name: "mem1", Type: field.Uint16}),
								field.NewString(field.StringSpec{Name: "mem2", Prefix: &field.IntSpec{Name: "length", Type: field.Uint8}}),
							},
						})
					},
				}),
			}
		},
		ReadPrepare: func(idx int, fields []field.Field) {
			if idx == 3 {
				fields[3].(*field.Array).ForceCount(int(fields[2].(*field.Int).Uint()))
			}
		},
		Refresh: func(fields []field.Field) bool {
			count := fields[2].(*field.Int)
			n := int64(min(fields[3].(*field.Array).Len(), 255))
			if count.Value() == n {
				return false
			}
			count.SetValue(n)
			return true
		},
	}
}

// Optional presence bits in Optionals.flags.
const (
	OptField2 = 0
	OptField3 = 1
)

// optionals: flags bit 0 and 1 gate field2 and field3, field4 is present
// when bytes remain.
func optionals() *message.Definition {
	syncModes := func(fields []field.Field) bool {
		flags := fields[0].(*field.Bitmask)
		changed := false
		for i, bit := range []int{OptField2, OptField3} {
			opt := fields[i+1].(*field.Optional)
			want := field.ModeMissing
			if flags.Bit(bit) {
				want = field.ModeExists
			}
			if opt.Mode() != want {
				opt.SetMode(want)
				changed = true
			}
		}
		return changed
	}
	return &message.Definition{
		ID:        IDOptionals,
		Key:       "Optionals",
		Name:      "Optionals",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewBitmask(field.BitmaskSpec{
					Name:     "flags",
					Length:   1,
					BitNames: []string{"field2Exists", "field3Exists"},
					Reserved: 0xfc,
				}),
				field.NewOptional(field.OptionalSpec{
					Field: field.NewInt(field.IntSpec{Name: "field2", Type: field.Uint16}),
					Mode:  field.ModeMissing,
				}),
				field.NewOptional(field.OptionalSpec{
					Field: field.NewString(field.StringSpec{Name: "field3", Prefix: &field.IntSpec{Name: "length", Type: field.Uint8}}),
					Mode:  field.ModeMissing,
				}),
				field.NewOptional(field.OptionalSpec{
					Field: field.NewInt(field.IntSpec{Name: "field4", Type: field.Uint16}),
					Mode:  field.ModeTentative,
				}),
			}
		},
		ReadPrepare: func(idx int, fields []field.Field) {
			if idx == 1 {
				syncModes(fields)
			}
		},
		Refresh: syncModes,
	}
}

func floatValues() *message.Definition {
	return &message.Definition{
		ID:        IDFloatValues,
		Key:       "FloatValues",
		Name:      "FloatValues",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				field.NewFloat(field.FloatSpec{
					Name:     "field1",
					Width:    32,
					Ranges:   []field.FloatRange{{Min: -100, Max: 100}},
					Decimals: 2,
				}),
				field.NewFloat(field.FloatSpec{
					Name:     "field2",
					Width:    64,
					Specials: []field.FloatSpecial{{Value: 0, Name: "Zero"}},
					Decimals: 6,
				}),
				// Tenths of a degree.
				field.NewInt(field.IntSpec{Name: "field3", Type: field.Int16, ScaleNum: 1, ScaleDen: 10, Decimals: 1}),
			}
		},
	}
}

// Variants property keys.
const (
	PropKeyU8     = 1
	PropKeyU16    = 2
	PropKeyString = 3
)

func property(name string, key int64, value field.Field) field.Field {
	return field.NewBundle(field.BundleSpec{
		Name: name,
		Members: []field.Field{
			field.NewInt(field.IntSpec{
				Name:          "key",
				Type:          field.Uint8,
				Default:       key,
				Ranges:        []field.Range{{Min: key, Max: key}},
				FailOnInvalid: true,
				Display:       field.Display{ReadOnly: true},
			}),
			value,
		},
	})
}

func propertyVariant(name string) field.Field {
	return field.NewVariant(field.VariantSpec{
		Name: name,
		Members: []field.Field{
			property("prop1", PropKeyU8, field.NewInt(field.IntSpec{Name: "val", Type: field.Uint8})),
			property("prop2", PropKeyU16, field.NewInt(field.IntSpec{Name: "val", Type: field.Uint16})),
			property("prop3", PropKeyString, field.NewString(field.StringSpec{Name: "val", Prefix: &field.IntSpec{Name: "length", Type: field.Uint8}})),
		},
	})
}

func variants() *message.Definition {
	return &message.Definition{
		ID:        IDVariants,
		Key:       "Variants",
		Name:      "Variants",
		Transport: transport,
		Fields: func() []field.Field {
			return []field.Field{
				propertyVariant("field1"),
				field.NewArray(field.ArraySpec{
					Name:        "field2",
					CountPrefix: &field.IntSpec{Name: "count", Type: field.Uint8},
					Elem:        func() field.Field { return propertyVariant("prop") },
				}),
			}
		},
	}
}
