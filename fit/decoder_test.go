package fit

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/samcharles93/fitdecode/internal/fitcrc"
	"github.com/samcharles93/fitdecode/internal/fitio"
)

// buildMinimalFile assembles a single-segment FIT file with one file_id
// definition record and one file_id data record: type=4 (activity),
// manufacturer=1, product=257.
func buildMinimalFile(t *testing.T) []byte {
	t.Helper()

	var body []byte
	// definition record: local tag 0, global msg 0 (file_id), LE, 3 fields
	body = append(body, 0x40)      // header: definition, local tag 0
	body = append(body, 0x00)      // reserved
	body = append(body, 0x00)      // architecture: LE
	body = append(body, 0x00, 0x00) // global message number 0 (file_id)
	body = append(body, 0x03)      // 3 fields
	body = append(body, 0x00, 0x01, 0x00) // field 0 "type", size 1, base enum
	body = append(body, 0x01, 0x01, 0x02) // field 1 "manufacturer", size 1, base uint8
	body = append(body, 0x02, 0x02, 0x84) // field 2 "product", size 2, base uint16

	// data record: local tag 0
	body = append(body, 0x00) // header: data, local tag 0
	body = append(body, 0x04) // type = 4 (activity)
	body = append(body, 0x01) // manufacturer = 1 (garmin)
	body = append(body, 0x01, 0x01) // product = 0x0101 = 257 LE

	header := make([]byte, 12)
	header[0] = 12
	header[1] = 0x10 // protocol version
	binary.LittleEndian.PutUint16(header[2:4], 100)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(body)))
	copy(header[8:12], ".FIT")

	crc := fitcrc.New()
	crc.Write(header)
	crc.Write(body)
	trailer := make([]byte, 2)
	binary.LittleEndian.PutUint16(trailer, crc.Sum16())

	out := append(append([]byte{}, header...), body...)
	out = append(out, trailer...)
	return out
}

// TestDecodeEmptySegmentDataSize covers a file header declaring
// data_size 0: the segment has no records at all, so the very first
// Next() call must land on ErrDone (after reading and verifying the
// trailing CRC) instead of misreading the CRC bytes as a record header.
func TestDecodeEmptySegmentDataSize(t *testing.T) {
	header := make([]byte, 12)
	header[0] = 12
	header[1] = 0x10
	binary.LittleEndian.PutUint16(header[2:4], 100)
	binary.LittleEndian.PutUint32(header[4:8], 0) // data_size = 0
	copy(header[8:12], ".FIT")

	crc := fitcrc.New()
	crc.Write(header)
	trailer := make([]byte, 2)
	binary.LittleEndian.PutUint16(trailer, crc.Sum16())

	data := append(append([]byte{}, header...), trailer...)

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if _, err := d.Next(); !errors.Is(err, ErrDone) {
		t.Fatalf("Next() = %v, want ErrDone for an empty segment", err)
	}
}

func TestDecodeMinimalFile(t *testing.T) {
	data := buildMinimalFile(t)

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	msg, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Name != "file_id" {
		t.Fatalf("got message name %q, want file_id", msg.Name)
	}

	typeField, ok := msg.FieldByName("type")
	if !ok {
		t.Fatal("missing type field")
	}
	if typeField.Value.Kind != KindEnumName || typeField.Value.Str != "activity" {
		t.Fatalf("type field = %+v, want enum \"activity\"", typeField.Value)
	}

	productField, ok := msg.FieldByName("product")
	if !ok {
		t.Fatal("missing product field")
	}
	if got, _ := productField.Value.AsInt64(); got != 257 {
		t.Fatalf("product = %d, want 257", got)
	}

	_, err = d.Next()
	if !errors.Is(err, ErrDone) {
		t.Fatalf("second Next() = %v, want ErrDone", err)
	}

	_, err = d.Next()
	if !errors.Is(err, ErrDone) {
		t.Fatalf("third Next() = %v, want ErrDone (terminal)", err)
	}
}

func TestDecodeBadCRCRejected(t *testing.T) {
	data := buildMinimalFile(t)
	data[len(data)-1] ^= 0xFF // corrupt the trailing CRC

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if _, err := d.Next(); err != nil {
		t.Fatalf("first Next() should still succeed before the trailer is read: %v", err)
	}
	if _, err := d.Next(); !errors.Is(err, ErrCrcMismatch) {
		t.Fatalf("second Next() = %v, want ErrCrcMismatch", err)
	}
}

func TestDecodeBadCRCIgnored(t *testing.T) {
	data := buildMinimalFile(t)
	data[len(data)-1] ^= 0xFF

	d, err := Open(fitio.BytesSource(data), WithCRCVerification(false))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if _, err := d.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := d.Next(); !errors.Is(err, ErrDone) {
		t.Fatalf("second Next() = %v, want ErrDone", err)
	}
}

func TestDecodeTruncatedDataRecordSurfacesErrTruncatedInput(t *testing.T) {
	data := buildMinimalFile(t)

	// Drop the data record's last field (the 2-byte product) along with the
	// trailing CRC, so the decoder runs out of input mid-record.
	truncated := data[:len(data)-4]

	d, err := Open(fitio.BytesSource(truncated))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	_, err = d.Next()
	if !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("Next() = %v, want ErrTruncatedInput", err)
	}
}

// TestDecodeUnknownGlobalMessageNumber decodes a well-formed definition
// and data record pair whose global message number (65280) isn't in the
// embedded profile subset. The decoder must not error: it falls back to
// unknown_<n> naming for both the message and its field.
func TestDecodeUnknownGlobalMessageNumber(t *testing.T) {
	var body []byte
	body = append(body, 0x40)             // header: definition, local tag 0
	body = append(body, 0x00)             // reserved
	body = append(body, 0x00)             // architecture: LE
	body = append(body, 0x00, 0xFF)       // global message number 65280 (unknown)
	body = append(body, 0x01)             // 1 field
	body = append(body, 0x00, 0x01, 0x02) // field 0, size 1, base uint8

	body = append(body, 0x00) // data record header, local tag 0
	body = append(body, 0x2A) // field 0 value = 42

	header := make([]byte, 12)
	header[0] = 12
	header[1] = 0x10
	binary.LittleEndian.PutUint16(header[2:4], 100)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(body)))
	copy(header[8:12], ".FIT")

	crc := fitcrc.New()
	crc.Write(header)
	crc.Write(body)
	trailer := make([]byte, 2)
	binary.LittleEndian.PutUint16(trailer, crc.Sum16())

	data := append(append(append([]byte{}, header...), body...), trailer...)

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	msg, err := d.Next()
	if err != nil {
		t.Fatalf("Next() = %v, want no error for an unknown global message", err)
	}
	if msg.Name != "unknown_65280" {
		t.Fatalf("msg.Name = %q, want %q", msg.Name, "unknown_65280")
	}
	f, ok := msg.FieldByName("unknown_0")
	if !ok {
		t.Fatalf("expected field unknown_0, got %+v", msg.Fields)
	}
	if got, _ := f.Value.AsInt64(); got != 42 {
		t.Fatalf("field value = %v, want 42", got)
	}
}

func TestDecodeUnknownLocalTag(t *testing.T) {
	// a lone data record referencing local tag 0 with no prior definition
	header := make([]byte, 12)
	header[0] = 12
	header[1] = 0x10
	binary.LittleEndian.PutUint16(header[2:4], 100)
	binary.LittleEndian.PutUint32(header[4:8], 1)
	copy(header[8:12], ".FIT")

	body := []byte{0x00} // data record header, local tag 0, no definition seen

	crc := fitcrc.New()
	crc.Write(header)
	crc.Write(body)
	trailer := make([]byte, 2)
	binary.LittleEndian.PutUint16(trailer, crc.Sum16())

	data := append(append(append([]byte{}, header...), body...), trailer...)

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	_, err = d.Next()
	if !errors.Is(err, ErrUnknownLocalTag) {
		t.Fatalf("Next() = %v, want ErrUnknownLocalTag", err)
	}

	// the decoder is terminal after a non-CRC error
	_, err2 := d.Next()
	if !errors.Is(err2, ErrUnknownLocalTag) {
		t.Fatalf("Next() after failure = %v, want the same ErrUnknownLocalTag", err2)
	}
}

func TestMessagesIterator(t *testing.T) {
	data := buildMinimalFile(t)

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	var names []string
	for msg, err := range d.Messages() {
		if err != nil {
			t.Fatalf("iterator error: %v", err)
		}
		names = append(names, msg.Name)
	}
	if len(names) != 1 || names[0] != "file_id" {
		t.Fatalf("got %v, want [file_id]", names)
	}
}

func TestMessagesNamedFiltersByName(t *testing.T) {
	data := buildMinimalFile(t)

	d, err := Open(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	count := 0
	for range d.MessagesNamed("record") {
		count++
	}
	if count != 0 {
		t.Fatalf("got %d record messages, want 0", count)
	}
}

func TestDecodeAll(t *testing.T) {
	data := buildMinimalFile(t)

	f, err := DecodeAll(fitio.BytesSource(data))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(f.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(f.Messages))
	}
	if f.ProtocolVersion != 0x10 {
		t.Fatalf("protocol version = %#x, want 0x10", f.ProtocolVersion)
	}
}
