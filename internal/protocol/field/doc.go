// Package field owns the declarative field descriptors used to build messages.
//
// Every field kind (int, float, bitmask, enum, string, bitfield, optional,
// bundle, array, variant, unknown) implements Field. Descriptors are plain
// spec structs so message definitions are assembled at runtime:
//
//	year := field.NewInt(field.IntSpec{
//		Name:         "year",
//		Type:         field.Int16,
//		Length:       1,
//		Offset:       -2000,
//		Default:      2016,
//		NoSignExtend: true,
//	})
//
// Read consumes bytes from the front of a buffer and reports how many were
// used; Write appends to a buffer and never fails. Validity is advisory.
package field
