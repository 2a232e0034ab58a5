package fit

import (
	"testing"

	"github.com/samcharles93/fitdecode/internal/fitbase"
	"github.com/samcharles93/fitdecode/internal/fitprofile"
)

func TestExpandComponentSpeedAndDistance(t *testing.T) {
	d := &Decoder{}

	speedRaw := uint64(500)     // -> 500/100 = 5.0 m/s
	distanceRaw := uint64(160)  // -> 160/16 = 10.0 m
	packed := speedRaw | (distanceRaw << 12)
	raw := []byte{byte(packed), byte(packed >> 8), byte(packed >> 16)}

	rf := RawField{Number: 8, Type: fitbase.Byte, Raw: raw}
	msgDef := fitprofile.Lookup(20) // record
	fieldDef := msgDef.FieldByNumber(8)

	if len(fieldDef.Components) != 2 {
		t.Fatalf("expected 2 components on record field 8, got %d", len(fieldDef.Components))
	}

	// Both components read from the same packed raw value in declaration
	// order, so they share one shift register the way expandOneField
	// threads it through its component loop.
	shift := 0

	speedVal, ok := d.expandComponent(20, rf, fieldDef.Components[0], &shift)
	if !ok {
		t.Fatal("expected speed component to resolve")
	}
	if got, _ := speedVal.AsFloat64(); got != 5.0 {
		t.Fatalf("speed = %v, want 5.0", got)
	}

	distVal, ok := d.expandComponent(20, rf, fieldDef.Components[1], &shift)
	if !ok {
		t.Fatal("expected distance component to resolve")
	}
	if got, _ := distVal.AsFloat64(); got != 10.0 {
		t.Fatalf("distance = %v, want 10.0", got)
	}
}

func TestExpandComponentAccumulateAcrossCalls(t *testing.T) {
	d := &Decoder{}

	fieldDef := fitprofile.Lookup(20).FieldByNumber(8)
	distComp := fieldDef.Components[1] // 12-bit, accumulate, scale 16

	// Same source field number across two separate raw-field occurrences,
	// as consecutive "record" data records would produce. Each call gets
	// its own fresh shift register (a local, not decoder-lifetime, state),
	// while the accumulate register (keyed by message+target field) must
	// still carry forward.
	raw1 := []byte{byte(100), byte(100 >> 8), 0}
	rf1 := RawField{Number: 8, Type: fitbase.Byte, Raw: raw1}
	shift1 := 0
	v1, _ := d.expandComponent(20, rf1, distComp, &shift1)
	got1, _ := v1.AsFloat64()

	// Second reading wraps below the first (100 -> 10, simulating a rollover
	// past the 12-bit boundary): the accumulator must carry the high bits
	// forward instead of resetting.
	raw2 := []byte{byte(10), byte(10 >> 8), 0}
	rf2 := RawField{Number: 8, Type: fitbase.Byte, Raw: raw2}
	shift2 := 0
	v2, _ := d.expandComponent(20, rf2, distComp, &shift2)
	got2, _ := v2.AsFloat64()

	if got2 <= got1 {
		t.Fatalf("accumulated value went backwards: first=%v second=%v", got1, got2)
	}
}

// TestExpandComponentShiftDoesNotPersistAcrossRecords guards against the
// shift register accumulating across many occurrences of the same
// message+field: past a decoder-lifetime map keyed on message+field, the
// same 12+12-bit compressed_speed_distance field would eventually shift
// out to 0 after enough repeat records. Calling expandOneField many times
// over the same field number must resolve every one identically.
func TestExpandComponentShiftDoesNotPersistAcrossRecords(t *testing.T) {
	d := &Decoder{}

	speedRaw := uint64(500)
	distanceRaw := uint64(160)
	packed := speedRaw | (distanceRaw << 12)
	raw := []byte{byte(packed), byte(packed >> 8), byte(packed >> 16)}

	msgDef := fitprofile.Lookup(20) // record

	for i := 0; i < 5; i++ {
		rf := RawField{Number: 8, Type: fitbase.Byte, Raw: raw}
		fields, err := d.expandOneField(msgDef, rawMessage{GlobalMsgNum: 20}, rf)
		if err != nil {
			t.Fatalf("record %d: expandOneField: %v", i, err)
		}
		if len(fields) != 3 { // raw field itself + 2 components
			t.Fatalf("record %d: got %d fields, want 3", i, len(fields))
		}
		if got, _ := fields[1].Value.AsFloat64(); got != 5.0 {
			t.Fatalf("record %d: speed = %v, want 5.0", i, got)
		}
		// Same raw bytes every record, so the accumulator (correctly
		// decoder-lifetime, unlike the shift register) sees no rollover
		// and the resolved distance stays flat.
		if got, _ := fields[2].Value.AsFloat64(); got != 10.0 {
			t.Fatalf("record %d: distance = %v, want 10.0", i, got)
		}
	}
}

func TestResolveScalarAppliesScaleAndOffset(t *testing.T) {
	v := uintValue(600)
	out := resolveScalar(v, "uint16", 5, true, 500, true)
	got, ok := out.AsFloat64()
	if !ok {
		t.Fatal("expected numeric result")
	}
	if want := 600.0/5 - 500; got != want {
		t.Fatalf("resolveScalar = %v, want %v", got, want)
	}
}

func TestResolveScalarAppliesScaleWithNoOffset(t *testing.T) {
	// record.speed: Scale 1000, HasScale true, no offset declared at all.
	v := uintValue(5000)
	out := resolveScalar(v, "uint16", 1000, true, 0, false)
	got, ok := out.AsFloat64()
	if !ok {
		t.Fatal("expected numeric result")
	}
	if got != 5.0 {
		t.Fatalf("resolveScalar = %v, want 5.0", got)
	}
}

func TestResolveScalarAppliesOffsetWithNoScale(t *testing.T) {
	v := uintValue(500)
	out := resolveScalar(v, "uint16", 0, false, 500, true)
	got, ok := out.AsFloat64()
	if !ok {
		t.Fatal("expected numeric result")
	}
	if got != 0.0 {
		t.Fatalf("resolveScalar = %v, want 0.0", got)
	}
}

func TestResolveScalarPassesNoneThrough(t *testing.T) {
	out := resolveScalar(noneValue(), "uint16", 5, true, 0, true)
	if !out.None() {
		t.Fatalf("expected none to stay none, got %+v", out)
	}
}

func TestResolveScalarResolvesEnum(t *testing.T) {
	out := resolveScalar(uintValue(4), "file", 0, false, 0, false)
	if out.Kind != KindEnumName || out.Str != "activity" {
		t.Fatalf("resolveScalar = %+v, want enum \"activity\"", out)
	}
}

func TestMatchSubfieldFirstMatchWins(t *testing.T) {
	fieldDef := fitprofile.FieldDef{
		Subfields: []fitprofile.Subfield{
			{Name: "a", RefField: 1, RefValues: map[int64]bool{1: true}},
			{Name: "b", RefField: 1, RefValues: map[int64]bool{2: true}},
			{Name: "c", RefField: 1, RefValues: map[int64]bool{2: true}},
		},
	}
	raw := rawMessage{Fields: []RawField{
		{Number: 1, Value: uintValue(2)},
	}}

	sf, ok := matchSubfield(fieldDef, raw)
	if !ok || sf.Name != "b" {
		t.Fatalf("matchSubfield = %+v, %v, want subfield b", sf, ok)
	}
}

func TestMatchSubfieldNoMatch(t *testing.T) {
	fieldDef := fitprofile.FieldDef{
		Subfields: []fitprofile.Subfield{
			{Name: "a", RefField: 1, RefValues: map[int64]bool{1: true}},
		},
	}
	raw := rawMessage{Fields: []RawField{
		{Number: 1, Value: uintValue(9)},
	}}

	if _, ok := matchSubfield(fieldDef, raw); ok {
		t.Fatal("expected no subfield match")
	}
}
