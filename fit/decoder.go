// Package fit decodes ANT/Garmin FIT binary files into a stream of typed,
// named messages, per the FIT self-describing record format: a header,
// interleaved definition and data records, and a trailing CRC, optionally
// repeated as chained segments.
package fit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/samcharles93/fitdecode/internal/fitbase"
	"github.com/samcharles93/fitdecode/internal/fitcrc"
	"github.com/samcharles93/fitdecode/internal/fitio"
	"github.com/samcharles93/fitdecode/internal/fitprocess"
	"github.com/samcharles93/fitdecode/internal/fitprofile"
)

// baseTypeFromCode maps a field_description message's fit_base_type_id
// value onto the decoder's own base-type enum.
func baseTypeFromCode(code int64) fitbase.Type {
	t := fitbase.Type(code)
	if !fitbase.IsKnown(t) {
		return fitbase.Byte
	}
	return t
}

type decoderState uint8

const (
	stateHeader decoderState = iota
	stateRecord
	stateSegmentEnd
	stateDone
)

// Option configures a Decoder at Open time.
type Option func(*Decoder)

// WithCRCVerification enables or disables CRC checking (default true).
// Disabling it lets a caller recover values from a file with a corrupted
// trailer.
func WithCRCVerification(enabled bool) Option {
	return func(d *Decoder) { d.verifyCRC = enabled }
}

// WithProcessor installs a custom Processor, replacing the default
// date_time/local_date_time conversion.
func WithProcessor(p fitprocess.Processor) Option {
	return func(d *Decoder) { d.processor = p }
}

// Decoder holds all per-file decode state: the byte reader, the running
// CRC, the local-definition table, the developer-data index, the
// accumulated compressed-timestamp reference, and the component
// accumulation registers. It is single-threaded and non-suspending: a
// Decoder must not be used from more than one goroutine at a time.
type Decoder struct {
	r         *fitio.Reader
	crc       *fitcrc.CRC
	closer    func() error
	verifyCRC bool
	processor fitprocess.Processor

	state   decoderState
	segment int
	header  FileHeader

	localDefs [16]*localDef
	devFields map[devFieldKey]developerFieldSchema

	accum map[accumKey]uint64

	haveTimestampRef bool
	timestampRef     uint32

	dataConsumed uint32 // bytes consumed in the current segment's data region

	terminalErr error
}

// Open begins decoding source. The file header is read immediately so
// ProtocolVersion/ProfileVersion are available before the first call to
// Next.
func Open(source fitio.Source, opts ...Option) (*Decoder, error) {
	r, size, closer, err := source.Open()
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		r:         fitio.NewReader(r, size),
		crc:       fitcrc.New(),
		closer:    closer,
		verifyCRC: true,
		processor: fitprocess.Default(),
		devFields: map[devFieldKey]developerFieldSchema{},
	}
	for _, opt := range opts {
		opt(d)
	}

	d.r.SetCRCSink(d.crc)

	if err := d.readSegmentHeader(); err != nil {
		d.fail(err)
		return nil, err
	}

	return d, nil
}

func (d *Decoder) readSegmentHeader() error {
	// Reset before reading so the header's own bytes count toward this
	// segment's running CRC: the trailing checksum covers everything from
	// the start of the header through the last data record.
	d.crc.Reset()
	hdr, err := readFileHeader(d.r)
	if err != nil {
		return wrapErr(d.r.Offset(), d.segment, err)
	}
	d.header = hdr
	d.dataConsumed = 0
	d.state = stateRecord
	for i := range d.localDefs {
		d.localDefs[i] = nil
	}
	return nil
}

// ProtocolVersion returns the most recently read segment's protocol
// version byte.
func (d *Decoder) ProtocolVersion() uint8 { return d.header.ProtocolVersion }

// ProfileVersion returns the most recently read segment's profile version.
func (d *Decoder) ProfileVersion() uint16 { return d.header.ProfileVersion }

func (d *Decoder) fail(err error) {
	d.terminalErr = err
	d.state = stateDone
}

// Close releases any resources (an mmap'd region, an opened file) the
// Source allocated when opening.
func (d *Decoder) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}

// Next decodes and returns the next message, or ErrDone once the input
// (all chained segments) is exhausted. Once Next returns a non-ErrDone
// error, the Decoder is terminal: every subsequent call returns the same
// error, since parser state is not recoverable after anything but a CRC
// mismatch.
func (d *Decoder) Next() (Message, error) {
	if d.terminalErr != nil {
		return Message{}, d.terminalErr
	}

	for {
		switch d.state {
		case stateRecord:
			msg, ok, err := d.stepRecord()
			if err != nil {
				d.fail(err)
				return Message{}, err
			}
			if ok {
				return msg, nil
			}
			// definition record: loop and read the next one
		case stateSegmentEnd:
			if err := d.finishSegment(); err != nil {
				d.fail(err)
				return Message{}, err
			}
			if err := d.tryNextSegment(); err != nil {
				if err == io.EOF {
					d.state = stateDone
					continue
				}
				d.fail(err)
				return Message{}, err
			}
		case stateDone:
			d.terminalErr = ErrDone
			return Message{}, ErrDone
		}
	}
}

// stepRecord reads exactly one record header and its payload. It returns
// ok=true with a Message when the record was a data record; ok=false when
// it was a definition record (caller loops for the next record).
func (d *Decoder) stepRecord() (Message, bool, error) {
	if d.dataConsumed >= d.header.DataSize {
		d.state = stateSegmentEnd
		return Message{}, false, nil
	}

	startOffset := d.r.Offset()
	hb, err := d.r.Uint8()
	if err != nil {
		return Message{}, false, wrapErr(startOffset, d.segment, err)
	}
	d.dataConsumed += uint32(d.r.Offset() - startOffset)
	hdr := decodeRecordHeader(hb)

	if hdr.Compressed {
		if !d.haveTimestampRef {
			// No prior full timestamp: treat offset as an absolute low
			// 5 bits against a zero reference, same wraparound rule.
			d.timestampRef = nextCompressedTimestamp(0, hdr.TimeOffset)
			d.haveTimestampRef = true
		} else {
			d.timestampRef = nextCompressedTimestamp(d.timestampRef, hdr.TimeOffset)
		}
		return d.decodeDataFor(hdr.LocalTag, &d.timestampRef)
	}

	if hdr.IsDefinition {
		before := d.r.Offset()
		def, err := readDefinitionRecord(d.r, hdr)
		if err != nil {
			return Message{}, false, wrapErr(before, d.segment, err)
		}
		d.dataConsumed += uint32(d.r.Offset() - before)
		d.localDefs[hdr.LocalTag] = &def
		return Message{}, false, nil
	}

	return d.decodeDataFor(hdr.LocalTag, nil)
}

func (d *Decoder) decodeDataFor(tag uint8, compressedTS *uint32) (Message, bool, error) {
	def := d.localDefs[tag]
	if def == nil {
		return Message{}, false, wrapErr(d.r.Offset(), d.segment, ErrUnknownLocalTag)
	}

	before := d.r.Offset()
	raw, err := readDataRecord(d.r, *def, compressedTS)
	if err != nil {
		return Message{}, false, wrapErr(before, d.segment, err)
	}
	d.dataConsumed += uint32(d.r.Offset() - before)

	// A full timestamp (field 253) becomes the reference that later
	// compressed-header records extend.
	if compressedTS == nil {
		for _, f := range raw.Fields {
			if f.Number == 253 {
				if n, ok := f.Value.AsInt64(); ok {
					d.timestampRef = uint32(n)
					d.haveTimestampRef = true
				}
				break
			}
		}
	}

	d.learnDeveloperDescriptor(def.GlobalMsgNum, raw)

	msgDef := fitprofile.Lookup(def.GlobalMsgNum)
	msg, err := d.expandFields(msgDef, raw)
	if err != nil {
		return Message{}, false, wrapErr(before, d.segment, err)
	}
	return msg, true, nil
}

// learnDeveloperDescriptor records a field_description message's payload
// into the decoder's developer-field index, so later developer fields
// referencing the same (developer_data_index, field_definition_number)
// resolve to a name, base type and units instead of raw bytes. The
// descriptor's scale and offset fields are not read, so developer field
// values are never scaled or offset.
func (d *Decoder) learnDeveloperDescriptor(globalMsgNum uint16, raw rawMessage) {
	const fieldDescriptionMsg = 206
	if globalMsgNum != fieldDescriptionMsg {
		return
	}

	var devIndex, fieldNum uint8
	var baseTypeCode int64
	var name, units string
	for _, f := range raw.Fields {
		switch f.Number {
		case 0:
			if n, ok := f.Value.AsInt64(); ok {
				devIndex = uint8(n)
			}
		case 1:
			if n, ok := f.Value.AsInt64(); ok {
				fieldNum = uint8(n)
			}
		case 2:
			baseTypeCode, _ = f.Value.AsInt64()
		case 3:
			name = f.Value.Str
		case 8:
			units = f.Value.Str
		}
	}
	if name == "" {
		return
	}
	d.devFields[devFieldKey{DevIndex: devIndex, Field: fieldNum}] = developerFieldSchema{
		name:     name,
		units:    units,
		baseType: baseTypeFromCode(baseTypeCode),
	}
}

func (d *Decoder) finishSegment() error {
	got := d.crc.Sum16()
	crcBytes, err := d.r.ReadRaw(2)
	if err != nil {
		return wrapErr(d.r.Offset(), d.segment, err)
	}
	expected := binary.LittleEndian.Uint16(crcBytes)
	if d.verifyCRC && got != expected {
		return fmt.Errorf("%w: got %#04x, want %#04x", ErrCrcMismatch, got, expected)
	}
	return nil
}

func (d *Decoder) tryNextSegment() error {
	if _, err := d.r.PeekByte(); err != nil {
		if errors.Is(err, fitio.ErrTruncated) {
			return io.EOF
		}
		return err
	}
	d.segment++
	return d.readSegmentHeader()
}
