package fitprofile

import "testing"

func TestLookupKnownMessage(t *testing.T) {
	m := Lookup(20) // record
	if m.Name != "record" {
		t.Fatalf("Lookup(20).Name = %q, want %q", m.Name, "record")
	}
}

// TestLookupUnknownMessage exercises the fallback path for a global
// message number the embedded profile subset doesn't declare: it must
// come back as a synthetic unknown_<n> descriptor rather than an error,
// so an unrecognized message never aborts a decode.
func TestLookupUnknownMessage(t *testing.T) {
	m := Lookup(65534)
	if m.Name != "unknown_65534" {
		t.Fatalf("Lookup(65534).Name = %q, want %q", m.Name, "unknown_65534")
	}
	if m.Number != 65534 {
		t.Fatalf("Lookup(65534).Number = %d, want 65534", m.Number)
	}
	if len(m.Fields) != 0 {
		t.Fatalf("Lookup(65534).Fields = %v, want empty", m.Fields)
	}
}

// TestFieldByNumberUnknownField mirrors the unknown-message fallback one
// level down: a field number absent from a known message's schema still
// resolves to a synthetic unknown_<n> field instead of a zero value or
// panic.
func TestFieldByNumberUnknownField(t *testing.T) {
	f := Lookup(0).FieldByNumber(200) // file_id has no field 200
	if f.Name != "unknown_200" {
		t.Fatalf("FieldByNumber(200).Name = %q, want %q", f.Name, "unknown_200")
	}
}
