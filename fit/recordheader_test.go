package fit

import "testing"

func TestDecodeRecordHeaderCompressed(t *testing.T) {
	h := decodeRecordHeader(0x80 | (2 << 5) | 0x05) // compressed, local tag 2, offset 5
	if !h.Compressed || h.LocalTag != 2 || h.TimeOffset != 5 {
		t.Fatalf("decodeRecordHeader = %+v, want compressed local tag 2 offset 5", h)
	}
}

func TestDecodeRecordHeaderDefinitionWithDevFields(t *testing.T) {
	h := decodeRecordHeader(0x40 | 0x20 | 0x03) // normal, definition, dev fields, local tag 3
	if h.Compressed || !h.IsDefinition || !h.HasDevFields || h.LocalTag != 3 {
		t.Fatalf("decodeRecordHeader = %+v, want definition+devfields local tag 3", h)
	}
}

// TestNextCompressedTimestampChain reconstructs a chain of compressed
// timestamps from their 5-bit offsets against a reference timestamp of
// 1000, mirroring how consecutive compressed-header data records within
// the same segment share and advance one running reference.
func TestNextCompressedTimestampChain(t *testing.T) {
	ref := uint32(1000)

	ref = nextCompressedTimestamp(ref, 5)
	if ref != 1005 {
		t.Fatalf("first offset: ref = %d, want 1005", ref)
	}

	ref = nextCompressedTimestamp(ref, 10)
	if ref != 1010 {
		t.Fatalf("second offset: ref = %d, want 1010", ref)
	}

	ref = nextCompressedTimestamp(ref, 20)
	if ref != 1020 {
		t.Fatalf("third offset: ref = %d, want 1020", ref)
	}
}

// TestNextCompressedTimestampWraps rolls the upper bits forward when a
// new offset is smaller than the previous one, since the 5-bit field
// wraps every 32 seconds.
func TestNextCompressedTimestampWraps(t *testing.T) {
	ref := uint32(1020) // low 5 bits: 1020 & 0x1F = 28

	ref = nextCompressedTimestamp(ref, 3) // 3 < 28, so the reference rolls forward by 32
	if want := uint32(1020&^0x1F) + 0x20 + 3; ref != want {
		t.Fatalf("wrapped ref = %d, want %d", ref, want)
	}
}
