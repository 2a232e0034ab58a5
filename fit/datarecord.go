package fit

import (
	"encoding/binary"
	"math"

	"github.com/samcharles93/fitdecode/internal/fitbase"
	"github.com/samcharles93/fitdecode/internal/fitio"
)

// RawField pairs a field number and base type with its parsed value,
// before any profile-driven expansion (subfields, components, scale,
// enums, processor hooks).
type RawField struct {
	Number uint8
	Type   fitbase.Type
	Raw    []byte
	Value  Value
}

// rawMessage is one fully-read data record: its global message number and
// the raw fields decoded from it, native fields first and then developer
// fields, both in declaration order.
type rawMessage struct {
	GlobalMsgNum uint16
	Fields       []RawField
	DevFields    []devRawField
}

type devRawField struct {
	DevIndex uint8
	Number   uint8
	Raw      []byte
}

func readDataRecord(r *fitio.Reader, def localDef, compressedTimestamp *uint32) (rawMessage, error) {
	msg := rawMessage{GlobalMsgNum: def.GlobalMsgNum}

	if compressedTimestamp != nil {
		hasNative253 := false
		for _, fs := range def.Fields {
			if fs.Number == 253 {
				hasNative253 = true
				break
			}
		}
		if !hasNative253 {
			msg.Fields = append(msg.Fields, RawField{
				Number: 253,
				Type:   fitbase.Uint32,
				Value:  uintValue(uint64(*compressedTimestamp)),
			})
		}
	}

	for _, fs := range def.Fields {
		raw, err := r.ReadFull(fs.ByteSize)
		if err != nil {
			return rawMessage{}, err
		}
		val := parseFieldValue(raw, fs.Type, def.Order)
		msg.Fields = append(msg.Fields, RawField{Number: fs.Number, Type: fs.Type, Raw: raw, Value: val})
	}

	for _, ds := range def.DevFields {
		raw, err := r.ReadFull(ds.ByteSize)
		if err != nil {
			return rawMessage{}, err
		}
		msg.DevFields = append(msg.DevFields, devRawField{DevIndex: ds.DevIndex, Number: ds.Number, Raw: raw})
	}

	return msg, nil
}

// parseFieldValue turns a raw byte slice for one field into a Value,
// splitting into an array when the byte size is a clean multiple of the
// base type's size, and falling back to an opaque byte blob otherwise.
func parseFieldValue(raw []byte, t fitbase.Type, order binary.ByteOrder) Value {
	info := fitbase.Lookup(t)

	if t == fitbase.String {
		return parseString(raw)
	}

	n, rawFallback := fitbase.SplitOrRaw(t, len(raw))
	if rawFallback {
		return bytesValue(raw)
	}
	if n == 0 {
		return bytesValue(nil)
	}

	elems := make([]Value, n)
	allNone := true
	for i := 0; i < n; i++ {
		chunk := raw[i*info.Size : (i+1)*info.Size]
		v := parseScalar(chunk, t, info, order)
		if !v.None() {
			allNone = false
		}
		elems[i] = v
	}

	if allNone {
		return noneValue()
	}
	if n == 1 {
		return elems[0]
	}
	return Value{Kind: KindArray, Array: elems}
}

func parseString(raw []byte) Value {
	if len(raw) == 0 {
		return noneValue()
	}
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	if end == 0 {
		return noneValue()
	}
	return stringValue(string(raw[:end]))
}

func parseScalar(chunk []byte, t fitbase.Type, info fitbase.Info, order binary.ByteOrder) Value {
	switch info.Size {
	case 1:
		b := chunk[0]
		if info.HasInvalid && uint64(b) == info.Invalid {
			return noneValue()
		}
		if info.Signed {
			return intValue(int64(int8(b)))
		}
		return uintValue(uint64(b))
	case 2:
		u := order.Uint16(chunk)
		if info.HasInvalid && uint64(u) == info.Invalid {
			return noneValue()
		}
		if info.Signed {
			return intValue(int64(int16(u)))
		}
		return uintValue(uint64(u))
	case 4:
		u := order.Uint32(chunk)
		if info.HasInvalid && uint64(u) == info.Invalid {
			return noneValue()
		}
		if t == fitbase.Float32 {
			return floatValue(float64(math.Float32frombits(u)))
		}
		if info.Signed {
			return intValue(int64(int32(u)))
		}
		return uintValue(uint64(u))
	case 8:
		u := order.Uint64(chunk)
		if info.HasInvalid && uint64(u) == info.Invalid {
			return noneValue()
		}
		if t == fitbase.Float64 {
			return floatValue(math.Float64frombits(u))
		}
		if info.Signed {
			return intValue(int64(u))
		}
		return uintValue(u)
	default:
		return bytesValue(chunk)
	}
}
