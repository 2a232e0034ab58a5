package fitprofile

import "github.com/samcharles93/fitdecode/internal/fitbase"

// This file stands in for the artifact a profile-generation script would
// produce from the vendor SDK's Profile spreadsheet: a representative
// subset of global messages and enum types, enough to decode the common
// streaming messages (file_id, record, event, lap, session, activity,
// device_info) plus the two developer-data descriptor messages.

func scaled(s float64) (float64, bool)  { return s, true }
func offsetBy(o float64) (float64, bool) { return o, true }

var Messages = map[uint16]MessageDef{
	0: { // file_id
		Number: 0,
		Name:   "file_id",
		Fields: map[uint8]FieldDef{
			0: {Number: 0, Name: "type", Type: "file"},
			1: {Number: 1, Name: "manufacturer", Type: "manufacturer"},
			2: {Number: 2, Name: "product", Type: "uint16"},
			3: {Number: 3, Name: "serial_number", Type: "uint32z"},
			4: {Number: 4, Name: "time_created", Type: "date_time"},
			5: {Number: 5, Name: "number", Type: "uint16"},
		},
	},
	18: { // session
		Number: 18,
		Name:   "session",
		Fields: map[uint8]FieldDef{
			253: {Number: 253, Name: "timestamp", Type: "date_time"},
			2:   {Number: 2, Name: "start_time", Type: "date_time"},
			5:   {Number: 5, Name: "sport", Type: "sport"},
			7:   mustScaleOffset(FieldDef{Number: 7, Name: "total_elapsed_time", Type: "uint32", Units: "s"}, 1000, 0),
			8:   mustScaleOffset(FieldDef{Number: 8, Name: "total_timer_time", Type: "uint32", Units: "s"}, 1000, 0),
			9:   mustScaleOffset(FieldDef{Number: 9, Name: "total_distance", Type: "uint32", Units: "m"}, 100, 0),
			14:  {Number: 14, Name: "avg_speed", Type: "uint16", Units: "m/s", Scale: 1000, HasScale: true},
			16:  {Number: 16, Name: "avg_heart_rate", Type: "uint8", Units: "bpm"},
			17:  {Number: 17, Name: "max_heart_rate", Type: "uint8", Units: "bpm"},
		},
	},
	19: { // lap
		Number: 19,
		Name:   "lap",
		Fields: map[uint8]FieldDef{
			253: {Number: 253, Name: "timestamp", Type: "date_time"},
			2:   {Number: 2, Name: "start_time", Type: "date_time"},
			7:   mustScaleOffset(FieldDef{Number: 7, Name: "total_distance", Type: "uint32", Units: "m"}, 100, 0),
			8:   mustScaleOffset(FieldDef{Number: 8, Name: "total_timer_time", Type: "uint32", Units: "s"}, 1000, 0),
		},
	},
	20: { // record
		Number: 20,
		Name:   "record",
		Fields: map[uint8]FieldDef{
			253: {Number: 253, Name: "timestamp", Type: "date_time"},
			0:   {Number: 0, Name: "position_lat", Type: "sint32", Units: "semicircles"},
			1:   {Number: 1, Name: "position_long", Type: "sint32", Units: "semicircles"},
			2:   mustScaleOffsetH(FieldDef{Number: 2, Name: "altitude", Type: "uint16", Units: "m"}, 5, 500),
			3:   {Number: 3, Name: "heart_rate", Type: "uint8", Units: "bpm"},
			4:   {Number: 4, Name: "cadence", Type: "uint8", Units: "rpm"},
			5:   mustScaleOffset(FieldDef{Number: 5, Name: "distance", Type: "uint32", Units: "m"}, 100, 0),
			6:   {Number: 6, Name: "speed", Type: "uint16", Units: "m/s", Scale: 1000, HasScale: true},
			7:   {Number: 7, Name: "power", Type: "uint16", Units: "watts"},
			13:  {Number: 13, Name: "temperature", Type: "sint8", Units: "C"},
			// compressed_speed_distance packs a 12-bit speed and a 12-bit
			// accumulated distance into a 3-byte field, resolved
			// onto the plain speed/distance fields above (real FIT profile
			// shape, ported verbatim from the vendor Profile spreadsheet).
			8: {
				Number: 8, Name: "compressed_speed_distance", Type: "byte",
				Components: []Component{
					{TargetField: 6, BitWidth: 12, Scale: 100, HasScale: true, Units: "m/s"},
					{TargetField: 5, BitWidth: 12, Scale: 16, HasScale: true, Units: "m", Accumulate: true},
				},
			},
		},
	},
	21: { // event
		Number: 21,
		Name:   "event",
		Fields: map[uint8]FieldDef{
			253: {Number: 253, Name: "timestamp", Type: "date_time"},
			0:   {Number: 0, Name: "event", Type: "event"},
			1:   {Number: 1, Name: "event_type", Type: "event_type"},
			3:   {Number: 3, Name: "data", Type: "uint32"},
		},
	},
	23: { // device_info
		Number: 23,
		Name:   "device_info",
		Fields: map[uint8]FieldDef{
			253: {Number: 253, Name: "timestamp", Type: "date_time"},
			0:   {Number: 0, Name: "device_index", Type: "uint8"},
			1:   {Number: 1, Name: "device_type", Type: "uint8"},
			2:   {Number: 2, Name: "manufacturer", Type: "manufacturer"},
			3:   {Number: 3, Name: "serial_number", Type: "uint32z"},
			4:   {Number: 4, Name: "product", Type: "uint16"},
			5:   {Number: 5, Name: "software_version", Type: "uint16", Scale: 100, HasScale: true},
			6:   {Number: 6, Name: "hardware_version", Type: "uint8"},
		},
	},
	34: { // activity
		Number: 34,
		Name:   "activity",
		Fields: map[uint8]FieldDef{
			253: {Number: 253, Name: "timestamp", Type: "date_time"},
			1:   mustScaleOffset(FieldDef{Number: 1, Name: "total_timer_time", Type: "uint32", Units: "s"}, 1000, 0),
			2:   {Number: 2, Name: "num_sessions", Type: "uint16"},
			3:   {Number: 3, Name: "type", Type: "activity"},
			4:   {Number: 4, Name: "event", Type: "event"},
			5:   {Number: 5, Name: "event_type", Type: "event_type"},
			6:   {Number: 6, Name: "local_timestamp", Type: "local_date_time"},
		},
	},
	206: { // field_description
		Number: 206,
		Name:   "field_description",
		Fields: map[uint8]FieldDef{
			0:  {Number: 0, Name: "developer_data_index", Type: "uint8"},
			1:  {Number: 1, Name: "field_definition_number", Type: "uint8"},
			2:  {Number: 2, Name: "fit_base_type_id", Type: "uint8"},
			3:  {Number: 3, Name: "field_name", Type: "string"},
			6:  {Number: 6, Name: "scale", Type: "uint8"},
			7:  {Number: 7, Name: "offset", Type: "sint8"},
			8:  {Number: 8, Name: "units", Type: "string"},
			13: {Number: 13, Name: "native_message_num", Type: "uint16"},
			14: {Number: 14, Name: "native_field_num", Type: "uint8"},
		},
	},
	207: { // developer_data_id
		Number: 207,
		Name:   "developer_data_id",
		Fields: map[uint8]FieldDef{
			0: {Number: 0, Name: "developer_id", Type: "byte"},
			1: {Number: 1, Name: "application_id", Type: "byte"},
			3: {Number: 3, Name: "manufacturer_id", Type: "uint16"},
			4: {Number: 4, Name: "developer_data_index", Type: "uint8"},
		},
	},
}

var Types = map[string]TypeDef{
	"file": {
		Name: "file", BaseType: fitbase.Enum,
		Values: map[int64]string{1: "device", 4: "activity", 6: "workout", 9: "settings"},
	},
	"event": {
		Name: "event", BaseType: fitbase.Enum,
		Values: map[int64]string{0: "timer", 3: "workout", 4: "workout_step", 9: "lap", 10: "activity"},
	},
	"event_type": {
		Name: "event_type", BaseType: fitbase.Enum,
		Values: map[int64]string{0: "start", 1: "stop", 3: "stop_all", 4: "begin", 5: "end"},
	},
	"sport": {
		Name: "sport", BaseType: fitbase.Enum,
		Values: map[int64]string{0: "generic", 1: "running", 2: "cycling", 5: "swimming"},
	},
	"activity": {
		Name: "activity", BaseType: fitbase.Enum,
		Values: map[int64]string{0: "manual", 1: "auto_multi_sport"},
	},
	"manufacturer": {
		Name: "manufacturer", BaseType: fitbase.Uint16,
		Values: map[int64]string{1: "garmin", 255: "dynastream", 260: "garmin_fr405_antfs"},
	},
}

// mustScaleOffset returns a copy of f with the given scale and offset both
// set. It exists purely to keep the table above free of repeated
// HasScale/HasOffset boilerplate.
func mustScaleOffset(f FieldDef, scale, offset float64) FieldDef {
	f.Scale, f.HasScale = scaled(scale)
	f.Offset, f.HasOffset = offsetBy(offset)
	return f
}

// mustScaleOffsetH is mustScaleOffset with a non-zero offset spelled out
// for readability at call sites (altitude's 500m offset, notably).
func mustScaleOffsetH(f FieldDef, scale, offset float64) FieldDef {
	return mustScaleOffset(f, scale, offset)
}
