// Package fitprofile holds the profile tables that give FIT's numeric
// wire format its names: global message number -> message schema, and
// type name -> enum value table. The tables themselves are data, generated
// offline from the vendor SDK's Profile spreadsheet (out of scope per the
// core decoder's spec); this package ships a representative embedded
// subset so the decoder is runnable end to end without that external
// generation step.
package fitprofile

import "github.com/samcharles93/fitdecode/internal/fitbase"

// Component describes one bit-packed sub-value of a larger field, resolved
// onto another field of the same message.
type Component struct {
	TargetField uint8
	BitWidth    int
	Scale       float64
	HasScale    bool
	Offset      float64
	HasOffset   bool
	Units       string
	Accumulate  bool
}

// Subfield is an alternate interpretation of a field, selected by the raw
// value of another field (RefField) in the same message.
type Subfield struct {
	Name       string
	RefField   uint8
	RefValues  map[int64]bool
	Type       string
	Units      string
	Scale      float64
	HasScale   bool
	Offset     float64
	HasOffset  bool
	Components []Component
}

// FieldDef is one profile field of a message: its number, canonical name,
// type reference, and optional scale/offset/units/subfields/components.
type FieldDef struct {
	Number     uint8
	Name       string
	Type       string
	Units      string
	Scale      float64
	HasScale   bool
	Offset     float64
	HasOffset  bool
	Subfields  []Subfield
	Components []Component
}

// MessageDef is a global message's schema: its name and its fields, keyed
// by field number for lookup during expansion.
type MessageDef struct {
	Number uint16
	Name   string
	Fields map[uint8]FieldDef
}

// TypeDef names either a bare base type or an enum overlay mapping integers
// to canonical names.
type TypeDef struct {
	Name     string
	BaseType fitbase.Type
	Values   map[int64]string
}

// FieldByNumber returns the field definition for num, or a synthetic
// unknown_<num> descriptor when the message doesn't declare it, so an
// unrecognized field never aborts the decode.
func (m MessageDef) FieldByNumber(num uint8) FieldDef {
	if f, ok := m.Fields[num]; ok {
		return f
	}
	return unknownField(num)
}

func unknownField(num uint8) FieldDef {
	return FieldDef{Number: num, Name: unknownName("unknown", int(num))}
}

func unknownMessage(num uint16) MessageDef {
	return MessageDef{Number: num, Name: unknownName("unknown", int(num)), Fields: map[uint8]FieldDef{}}
}

func unknownName(prefix string, n int) string {
	return prefix + "_" + itoa(n)
}

// itoa avoids pulling in strconv just for this one call site's use in a
// hot lookup path.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Lookup returns the message descriptor for a global message number,
// falling back to a synthetic unknown descriptor on miss.
func Lookup(num uint16) MessageDef {
	if m, ok := Messages[num]; ok {
		return m
	}
	return unknownMessage(num)
}

// LookupType returns the type descriptor for a profile type name, falling
// back to a synthetic descriptor with no enum values on miss.
func LookupType(name string) TypeDef {
	if t, ok := Types[name]; ok {
		return t
	}
	return TypeDef{Name: name}
}
