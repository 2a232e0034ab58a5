package fit

import "time"

// Field is one resolved, user-visible field: a name, its (possibly
// subfield-replaced) profile type and units, and its final value after
// scale/offset, enum resolution, and the processor hook.
type Field struct {
	Number uint8
	Name   string
	Type   string
	Units  string
	Value  Value
}

// Message is one decoded, fully resolved FIT data message.
type Message struct {
	GlobalMsgNum uint16
	Name         string
	Fields       []Field
	// Timestamp is set when the message carries (natively or via
	// compressed-header reconstruction) a resolved date_time field 253.
	Timestamp time.Time
	HasTimestamp bool
}

// FieldByName returns the first field with the given name, if any.
func (m Message) FieldByName(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
