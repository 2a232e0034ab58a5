package fit

import (
	"iter"

	"github.com/samcharles93/fitdecode/internal/fitio"
)

// File is the result of eagerly decoding an entire FIT input with
// DecodeAll: every message, in file order, plus the header fields of its
// first segment.
type File struct {
	ProtocolVersion uint8
	ProfileVersion  uint16
	Messages        []Message
}

// DecodeAll reads source to completion and returns every decoded message.
// Prefer Open plus Messages for large files where holding the whole result
// in memory at once isn't necessary.
func DecodeAll(source fitio.Source, opts ...Option) (*File, error) {
	d, err := Open(source, opts...)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	f := &File{ProtocolVersion: d.ProtocolVersion(), ProfileVersion: d.ProfileVersion()}
	for {
		msg, err := d.Next()
		if err == ErrDone {
			return f, nil
		}
		if err != nil {
			return f, err
		}
		f.Messages = append(f.Messages, msg)
	}
}

// Messages returns a pull iterator over every message in the input. The
// sequence ends without yielding anything further at ErrDone, after
// yielding any other error, or when the consuming range loop breaks early.
func (d *Decoder) Messages() iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for {
			msg, err := d.Next()
			if err == ErrDone {
				return
			}
			if !yield(msg, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// MessagesNamed filters Messages to those matching name, which may be a
// string (message name, e.g. "record") or a global message number given
// as an int or uint16; any other type matches nothing. Non-matching messages are skipped without being yielded, but a
// decode error always ends the sequence regardless of the message it was
// attached to.
func (d *Decoder) MessagesNamed(name any) iter.Seq2[Message, error] {
	matches := func(m Message) bool {
		switch n := name.(type) {
		case string:
			return m.Name == n
		case uint16:
			return m.GlobalMsgNum == n
		case int:
			return int(m.GlobalMsgNum) == n
		default:
			return false
		}
	}

	return func(yield func(Message, error) bool) {
		for msg, err := range d.Messages() {
			if err != nil {
				yield(msg, err)
				return
			}
			if !matches(msg) {
				continue
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}
