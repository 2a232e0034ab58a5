// Package fitbase holds the static FIT base-type registry: element size,
// endianness sensitivity, invalid sentinel and sign, keyed by the
// single-byte base-type code that appears in every field definition.
package fitbase

import "fmt"

// Type is a FIT base-type code: the whole on-wire byte, looked up as is.
// The high bit (0x80) is set on the multi-byte, endian-sensitive types.
type Type uint8

const (
	Enum     Type = 0x00
	Sint8    Type = 0x01
	Uint8    Type = 0x02
	Sint16   Type = 0x83
	Uint16   Type = 0x84
	Sint32   Type = 0x85
	Uint32   Type = 0x86
	String   Type = 0x07
	Float32  Type = 0x88
	Float64  Type = 0x89
	Uint8z   Type = 0x0A
	Uint16z  Type = 0x8B
	Uint32z  Type = 0x8C
	Byte     Type = 0x0D
	Sint64   Type = 0x8E
	Uint64   Type = 0x8F
	Uint64z  Type = 0x90
	Unknown  Type = 0xFF
)

// Info describes one base type: its element size in bytes, whether
// multi-byte elements honor the definition's declared endianness, the
// invalid sentinel (the max unsigned value of its width, or 0 for the "z"
// variants), and whether it is a signed integer type.
type Info struct {
	Name          string
	Size          int
	EndianAware   bool
	Signed        bool
	HasInvalid    bool
	Invalid       uint64
}

var registry = map[Type]Info{
	Enum:    {Name: "enum", Size: 1, HasInvalid: true, Invalid: 0xFF},
	Sint8:   {Name: "sint8", Size: 1, Signed: true, HasInvalid: true, Invalid: 0x7F},
	Uint8:   {Name: "uint8", Size: 1, HasInvalid: true, Invalid: 0xFF},
	Sint16:  {Name: "sint16", Size: 2, EndianAware: true, Signed: true, HasInvalid: true, Invalid: 0x7FFF},
	Uint16:  {Name: "uint16", Size: 2, EndianAware: true, HasInvalid: true, Invalid: 0xFFFF},
	Sint32:  {Name: "sint32", Size: 4, EndianAware: true, Signed: true, HasInvalid: true, Invalid: 0x7FFFFFFF},
	Uint32:  {Name: "uint32", Size: 4, EndianAware: true, HasInvalid: true, Invalid: 0xFFFFFFFF},
	String:  {Name: "string", Size: 1},
	Float32: {Name: "float32", Size: 4, EndianAware: true, HasInvalid: true, Invalid: 0xFFFFFFFF},
	Float64: {Name: "float64", Size: 8, EndianAware: true, HasInvalid: true, Invalid: 0xFFFFFFFFFFFFFFFF},
	Uint8z:  {Name: "uint8z", Size: 1, HasInvalid: true, Invalid: 0},
	Uint16z: {Name: "uint16z", Size: 2, EndianAware: true, HasInvalid: true, Invalid: 0},
	Uint32z: {Name: "uint32z", Size: 4, EndianAware: true, HasInvalid: true, Invalid: 0},
	Byte:    {Name: "byte", Size: 1, HasInvalid: true, Invalid: 0xFF},
	Sint64:  {Name: "sint64", Size: 8, EndianAware: true, Signed: true, HasInvalid: true, Invalid: 0x7FFFFFFFFFFFFFFF},
	Uint64:  {Name: "uint64", Size: 8, EndianAware: true, HasInvalid: true, Invalid: 0xFFFFFFFFFFFFFFFF},
	Uint64z: {Name: "uint64z", Size: 8, EndianAware: true, HasInvalid: true, Invalid: 0},
}

// unknownInfo is returned for base-type codes the registry does not
// recognize, so the decoder degrades to raw-byte presentation instead of
// failing.
var unknownInfo = Info{Name: "unknown", Size: -1}

// Lookup returns the Info for a base-type code. Unknown codes return a
// synthetic entry with Size -1; callers must check that before treating the
// type as element-splittable.
func Lookup(t Type) Info {
	if info, ok := registry[t]; ok {
		return info
	}
	return unknownInfo
}

// IsKnown reports whether t is a documented FIT base type.
func IsKnown(t Type) bool {
	_, ok := registry[t]
	return ok
}

func (t Type) String() string {
	if info, ok := registry[t]; ok {
		return info.Name
	}
	return fmt.Sprintf("basetype(%#02x)", uint8(t))
}
