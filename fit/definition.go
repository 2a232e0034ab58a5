package fit

import (
	"encoding/binary"

	"github.com/samcharles93/fitdecode/internal/fitbase"
	"github.com/samcharles93/fitdecode/internal/fitio"
)

// fieldSlot is one (field number, byte size, base type) triple from a
// definition record.
type fieldSlot struct {
	Number   uint8
	ByteSize int
	Type     fitbase.Type
}

// devFieldSlot is one developer-field triple: field number, byte size, and
// the developer-data index it's scoped under.
type devFieldSlot struct {
	Number   uint8
	ByteSize int
	DevIndex uint8
}

// localDef is one of the 16 local-tag slots, kept in a fixed-size array
// indexed by tag rather than a map.
type localDef struct {
	GlobalMsgNum uint16
	Order        binary.ByteOrder
	Fields       []fieldSlot
	DevFields    []devFieldSlot
}

func readDefinitionRecord(r *fitio.Reader, hdr recordHeader) (localDef, error) {
	if _, err := r.Uint8(); err != nil { // reserved
		return localDef{}, err
	}
	arch, err := r.Uint8()
	if err != nil {
		return localDef{}, err
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if arch == 1 {
		order = binary.BigEndian
	}

	globalMsg, err := r.Uint16(order)
	if err != nil {
		return localDef{}, err
	}

	nFields, err := r.Uint8()
	if err != nil {
		return localDef{}, err
	}

	def := localDef{GlobalMsgNum: globalMsg, Order: order}
	for i := 0; i < int(nFields); i++ {
		num, err := r.Uint8()
		if err != nil {
			return localDef{}, err
		}
		size, err := r.Uint8()
		if err != nil {
			return localDef{}, err
		}
		typeCode, err := r.Uint8()
		if err != nil {
			return localDef{}, err
		}
		def.Fields = append(def.Fields, fieldSlot{Number: num, ByteSize: int(size), Type: fitbase.Type(typeCode)})
	}

	if hdr.HasDevFields {
		nDev, err := r.Uint8()
		if err != nil {
			return localDef{}, err
		}
		for i := 0; i < int(nDev); i++ {
			num, err := r.Uint8()
			if err != nil {
				return localDef{}, err
			}
			size, err := r.Uint8()
			if err != nil {
				return localDef{}, err
			}
			devIdx, err := r.Uint8()
			if err != nil {
				return localDef{}, err
			}
			def.DevFields = append(def.DevFields, devFieldSlot{Number: num, ByteSize: int(size), DevIndex: devIdx})
		}
	}

	return def, nil
}
