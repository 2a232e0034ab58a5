// Package fitprocess implements the pluggable post-decode transformation
// hook: the default conversions from FIT's raw epoch-second values into
// time.Time (enum names are resolved by the decoder, not here), and the interface
// consumers implement to extend or override them.
package fitprocess

import "time"

// epoch is the FIT epoch: 1989-12-31T00:00:00Z, the origin for date_time
// and local_date_time fields.
var epoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// Field is the minimal view of a resolved field a Processor hook can
// inspect and mutate. Value is left as `any` here rather than the
// decoder's closed Value union. The decoder copies Units back into the
// decoded field after every hook, and Value only when the hook leaves a
// time.Time in it; any other replacement of Value is not carried back.
type Field struct {
	MessageName string
	FieldName   string
	Type        string
	Units       string
	Value       any
}

// Processor is invoked once per resolved field, after scale/offset and
// enum resolution, and may mutate Value/Units in place or leave them
// untouched. Implementations only need to be safe to run once per field
// per decode, not safe to invoke twice on already-converted output.
type Processor interface {
	// ProcessField is called for every resolved field, dispatched to the
	// most specific matching hook by name.
	ProcessField(f *Field)
}

// HookTable is the default Processor: a name -> function dispatch table,
// rather than a reflection-based per-field/per-type/per-message method
// lookup. Consumers wanting to override or add behavior construct a
// HookTable (usually starting from Default()) and mutate its maps.
type HookTable struct {
	// ByFieldName overrides behavior for a specific field name, regardless
	// of message (e.g. "timestamp").
	ByFieldName map[string]func(*Field)
	// ByTypeName overrides behavior for every field of a given profile
	// type name (e.g. "date_time", "local_date_time").
	ByTypeName map[string]func(*Field)
	// ByMessageName overrides behavior for every field of a given message
	// (e.g. "record").
	ByMessageName map[string]func(*Field)
}

// Default returns the built-in HookTable: date_time and local_date_time
// fields become time.Time, everything else passes through unchanged.
func Default() *HookTable {
	return &HookTable{
		ByFieldName:   map[string]func(*Field){},
		ByMessageName: map[string]func(*Field){},
		ByTypeName: map[string]func(*Field){
			"date_time":       convertDateTime,
			"local_date_time": convertLocalDateTime,
		},
	}
}

// ProcessField dispatches, most specific first: per-field name, then
// per-message name, then per-type name. At most one hook runs.
func (h *HookTable) ProcessField(f *Field) {
	if h == nil {
		return
	}
	if fn, ok := h.ByFieldName[f.FieldName]; ok {
		fn(f)
		return
	}
	if fn, ok := h.ByMessageName[f.MessageName]; ok {
		fn(f)
		return
	}
	if fn, ok := h.ByTypeName[f.Type]; ok {
		fn(f)
		return
	}
}

func convertDateTime(f *Field) {
	secs, ok := asInt64(f.Value)
	if !ok {
		return
	}
	f.Value = epoch.Add(time.Duration(secs) * time.Second)
}

// convertLocalDateTime treats the value as naive local time: the same
// FIT-epoch offset, but not tagged UTC.
func convertLocalDateTime(f *Field) {
	secs, ok := asInt64(f.Value)
	if !ok {
		return
	}
	t := epoch.Add(time.Duration(secs) * time.Second)
	f.Value = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case uint64:
		return int64(t), true
	case int32:
		return int64(t), true
	case uint32:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}
