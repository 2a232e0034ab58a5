package fit

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/samcharles93/fitdecode/internal/fitbase"
	"github.com/samcharles93/fitdecode/internal/fitprocess"
	"github.com/samcharles93/fitdecode/internal/fitprofile"
)

// accumKey identifies the per-(message, field) rolling high-bits register
// used to reconstruct component values that wrap within their declared
// bit width.
type accumKey struct {
	MsgNum uint16
	Field  uint8
}

// expandFields resolves one raw message into its user-visible fields:
// subfield selection, then scale/offset and enum resolution, then
// component expansion, and finally the processor hook. msgDef is passed in rather than
// looked up internally so tests can exercise the expander against a
// synthetic schema.
func (d *Decoder) expandFields(msgDef fitprofile.MessageDef, raw rawMessage) (Message, error) {
	msg := Message{GlobalMsgNum: raw.GlobalMsgNum, Name: msgDef.Name}

	for _, rf := range raw.Fields {
		fields, err := d.expandOneField(msgDef, raw, rf)
		if err != nil {
			return Message{}, err
		}
		for i := range fields {
			if err := d.runProcessor(&msg, &fields[i]); err != nil {
				return Message{}, err
			}
		}
		msg.Fields = append(msg.Fields, fields...)
	}

	for _, drf := range raw.DevFields {
		fd := d.developerField(drf.DevIndex, drf.Number)
		val := parseFieldValue(drf.Raw, fd.baseType, binary.LittleEndian)
		f := Field{Number: drf.Number, Name: fd.name, Type: fd.typeName, Units: fd.units, Value: val}
		if err := d.runProcessor(&msg, &f); err != nil {
			return Message{}, err
		}
		msg.Fields = append(msg.Fields, f)
	}

	if f, ok := msg.FieldByName("timestamp"); ok {
		if t, ok := f.Value.Native.(time.Time); ok {
			msg.HasTimestamp = true
			msg.Timestamp = t
		}
	}

	return msg, nil
}

// expandOneField resolves a single raw field, possibly into more than one
// output field when it declares components.
func (d *Decoder) expandOneField(msgDef fitprofile.MessageDef, raw rawMessage, rf RawField) ([]Field, error) {
	fieldDef := msgDef.FieldByNumber(rf.Number)

	typeName := fieldDef.Type
	units := fieldDef.Units
	scale, hasScale := fieldDef.Scale, fieldDef.HasScale
	offset, hasOffset := fieldDef.Offset, fieldDef.HasOffset
	components := fieldDef.Components

	if sf, ok := matchSubfield(fieldDef, raw); ok {
		typeName = sf.Type
		units = sf.Units
		scale, hasScale = sf.Scale, sf.HasScale
		offset, hasOffset = sf.Offset, sf.HasOffset
		components = sf.Components
	}

	out := make([]Field, 0, 1+len(components))

	resolved := resolveScalar(rf.Value, typeName, scale, hasScale, offset, hasOffset)
	out = append(out, Field{Number: rf.Number, Name: fieldDef.Name, Type: typeName, Units: units, Value: resolved})

	shift := 0
	for _, comp := range components {
		compVal, ok := d.expandComponent(raw.GlobalMsgNum, rf, comp, &shift)
		if !ok {
			continue
		}
		targetDef := msgDef.FieldByNumber(comp.TargetField)
		out = append(out, Field{
			Number: comp.TargetField,
			Name:   targetDef.Name,
			Type:   targetDef.Type,
			Units:  comp.Units,
			Value:  compVal,
		})
	}

	return out, nil
}

// matchSubfield returns the first subfield whose reference-field value
// (already decoded, elsewhere in raw.Fields) is in its accepted set.
func matchSubfield(fieldDef fitprofile.FieldDef, raw rawMessage) (fitprofile.Subfield, bool) {
	if len(fieldDef.Subfields) == 0 {
		return fitprofile.Subfield{}, false
	}
	for _, sf := range fieldDef.Subfields {
		for _, other := range raw.Fields {
			if other.Number != sf.RefField {
				continue
			}
			v, ok := other.Value.AsInt64()
			if ok && sf.RefValues[v] {
				return sf, true
			}
		}
	}
	return fitprofile.Subfield{}, false
}

// resolveScalar applies scale/offset then enum resolution to a raw Value.
// Scale and offset are independent: either may be set without the other,
// with the missing one defaulting to its identity (scale 1, offset 0).
func resolveScalar(v Value, typeName string, scale float64, hasScale bool, offset float64, hasOffset bool) Value {
	if v.None() {
		return v
	}

	if hasScale || hasOffset {
		if f, ok := v.AsFloat64(); ok {
			if !hasScale {
				scale = 1
			}
			return floatValue(f/scale - offset)
		}
	}

	if typeName != "" {
		td := fitprofile.LookupType(typeName)
		if len(td.Values) > 0 {
			if n, ok := v.AsInt64(); ok {
				if name, ok := td.Values[n]; ok {
					return enumValue(name)
				}
			}
		}
	}

	return v
}

// expandComponent extracts one bit-packed component from rf's raw bytes,
// applies accumulation and scale/offset, and returns the resolved value.
// shift tracks how many bits of rf's raw value earlier components in this
// same call to expandOneField have already consumed; it starts at 0 for
// every raw field occurrence and is never carried across records.
func (d *Decoder) expandComponent(msgNum uint16, rf RawField, comp fitprofile.Component, shift *int) (Value, bool) {
	if len(rf.Raw) == 0 {
		return Value{}, false
	}

	raw := littleEndianBits(rf.Raw)

	mask := uint64(1)<<uint(comp.BitWidth) - 1
	if comp.BitWidth >= 64 {
		mask = ^uint64(0)
	}
	extracted := (raw >> uint(*shift)) & mask
	*shift += comp.BitWidth

	value := extracted
	if comp.Accumulate {
		key := accumKey{MsgNum: msgNum, Field: comp.TargetField}
		if d.accum == nil {
			d.accum = map[accumKey]uint64{}
		}
		prev := d.accum[key]
		prevBase, prevLow := prev>>uint(comp.BitWidth), prev&mask
		if extracted < prevLow {
			prevBase++
		}
		full := (prevBase << uint(comp.BitWidth)) | extracted
		d.accum[key] = full
		value = full
	}

	var out Value
	if comp.HasScale || comp.HasOffset {
		scale := comp.Scale
		if !comp.HasScale {
			scale = 1
		}
		out = floatValue(float64(value)/scale - comp.Offset)
	} else {
		out = uintValue(value)
	}
	return out, true
}

// littleEndianBits combines up to 8 raw bytes into a little-endian
// unsigned integer, treating the source field's raw bytes as one bit
// stream.
func littleEndianBits(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(b[i])
	}
	return v
}

// developerFieldSchema is what the decoder knows about one developer
// field, either from a field_description message it has already seen, or
// a raw-bytes placeholder when it hasn't.
type developerFieldSchema struct {
	name     string
	typeName string
	units    string
	baseType fitbase.Type
}

func (d *Decoder) developerField(devIndex, fieldNum uint8) developerFieldSchema {
	if fd, ok := d.devFields[devFieldKey{devIndex, fieldNum}]; ok {
		return fd
	}
	return developerFieldSchema{name: fmt.Sprintf("dev_%d_%d", devIndex, fieldNum), baseType: fitbase.Byte}
}

type devFieldKey struct {
	DevIndex uint8
	Field    uint8
}

// runProcessor invokes the configured Processor on one resolved field,
// recovering from any panic as a *ProcessorError.
func (d *Decoder) runProcessor(msg *Message, f *Field) (err error) {
	if d.processor == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &ProcessorError{Field: f.Name, Err: fmt.Errorf("%v", r)}
		}
	}()

	pf := fitprocess.Field{
		MessageName: msg.Name,
		FieldName:   f.Name,
		Type:        f.Type,
		Units:       f.Units,
		Value:       f.Value.Interface(),
	}
	d.processor.ProcessField(&pf)
	f.Units = pf.Units

	if t, changed := pf.Value.(time.Time); changed {
		f.Value = Value{Kind: KindTime, Native: t}
	}
	return nil
}
