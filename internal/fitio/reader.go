// Package fitio provides the buffered, position-tracked byte reader that
// every FIT record is decoded through, plus the file/stream/byte-slice
// source constructors named in the FIT input contract.
package fitio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrTruncated is returned when fewer bytes are available than a record or
// segment demands.
var ErrTruncated = errors.New("fitio: truncated input")

// CRCSink receives every byte actually consumed from the underlying source,
// so the CRC engine stays decoupled from the transport.
type CRCSink interface {
	Write(p []byte) (int, error)
}

// Reader is a forward-only reader over a FIT byte source. It never seeks
// backwards, but is restartable across record boundaries: callers read
// exactly as many bytes as one record header or payload declares.
type Reader struct {
	r    *bufio.Reader
	off  int64
	size int64 // total input size, 0 if unknown (streaming source)
	crc  CRCSink
}

// NewReader wraps rd. size is the known total length of the input if
// available, or 0 when unknown; it is stored but no read consults it.
func NewReader(rd io.Reader, size int64) *Reader {
	return &Reader{r: bufio.NewReaderSize(rd, 4096), size: size}
}

// SetCRCSink installs (or clears, with nil) the observer notified of every
// byte consumed by ReadFull.
func (r *Reader) SetCRCSink(sink CRCSink) {
	r.crc = sink
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// PeekByte returns the next byte without advancing the reader.
func (r *Reader) PeekByte() (byte, error) {
	b, err := r.r.Peek(1)
	if err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return 0, err
	}
	return b[0], nil
}

// ReadFull reads exactly n bytes, feeding them to the CRC sink if one is
// installed, and returns ErrTruncated on a short read.
func (r *Reader) ReadFull(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("fitio: invalid read length %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	r.off += int64(n)
	if r.crc != nil {
		r.crc.Write(buf)
	}
	return buf, nil
}

// ReadRaw reads exactly n bytes without feeding the CRC sink, for reading
// a trailing checksum field that must not fold into its own computation.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	r.off += int64(n)
	return buf, nil
}

// Uint8 reads one unsigned byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.ReadFull(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 reads one signed byte.
func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

// Uint16 reads a two-byte unsigned integer in the given byte order.
func (r *Reader) Uint16(order binary.ByteOrder) (uint16, error) {
	b, err := r.ReadFull(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// Int16 reads a two-byte signed integer in the given byte order.
func (r *Reader) Int16(order binary.ByteOrder) (int16, error) {
	v, err := r.Uint16(order)
	return int16(v), err
}

// Uint32 reads a four-byte unsigned integer in the given byte order.
func (r *Reader) Uint32(order binary.ByteOrder) (uint32, error) {
	b, err := r.ReadFull(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

// Int32 reads a four-byte signed integer in the given byte order.
func (r *Reader) Int32(order binary.ByteOrder) (int32, error) {
	v, err := r.Uint32(order)
	return int32(v), err
}

// Uint64 reads an eight-byte unsigned integer in the given byte order.
func (r *Reader) Uint64(order binary.ByteOrder) (uint64, error) {
	b, err := r.ReadFull(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(b), nil
}

// Int64 reads an eight-byte signed integer in the given byte order.
func (r *Reader) Int64(order binary.ByteOrder) (int64, error) {
	v, err := r.Uint64(order)
	return int64(v), err
}

// Float32 reads a four-byte IEEE-754 float in the given byte order.
func (r *Reader) Float32(order binary.ByteOrder) (float32, error) {
	u, err := r.Uint32(order)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// Float64 reads an eight-byte IEEE-754 float in the given byte order.
func (r *Reader) Float64(order binary.ByteOrder) (float64, error) {
	u, err := r.Uint64(order)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}
