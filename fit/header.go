package fit

import (
	"encoding/binary"
	"fmt"

	"github.com/samcharles93/fitdecode/internal/fitcrc"
	"github.com/samcharles93/fitdecode/internal/fitio"
)

const fitSignature = ".FIT"

// FileHeader is the 12- or 14-byte header at the start of every FIT
// segment.
type FileHeader struct {
	HeaderSize      uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	HeaderCRC       uint16
	HasHeaderCRC    bool
}

func readFileHeader(r *fitio.Reader) (FileHeader, error) {
	sizeByte, err := r.Uint8()
	if err != nil {
		return FileHeader{}, err
	}
	if sizeByte != 12 && sizeByte != 14 {
		return FileHeader{}, fmt.Errorf("%w: got %d", ErrBadHeaderSize, sizeByte)
	}

	protoVersion, err := r.Uint8()
	if err != nil {
		return FileHeader{}, err
	}
	profileVersion, err := r.Uint16(binary.LittleEndian)
	if err != nil {
		return FileHeader{}, err
	}
	dataSize, err := r.Uint32(binary.LittleEndian)
	if err != nil {
		return FileHeader{}, err
	}
	sig, err := r.ReadFull(4)
	if err != nil {
		return FileHeader{}, err
	}
	if string(sig) != fitSignature {
		return FileHeader{}, fmt.Errorf("%w: got %q", ErrBadSignature, sig)
	}

	hdr := FileHeader{
		HeaderSize:      sizeByte,
		ProtocolVersion: protoVersion,
		ProfileVersion:  profileVersion,
		DataSize:        dataSize,
	}

	if sizeByte == 14 {
		crc, err := r.Uint16(binary.LittleEndian)
		if err != nil {
			return FileHeader{}, err
		}
		hdr.HeaderCRC = crc
		hdr.HasHeaderCRC = crc != 0
	}

	if hdr.HasHeaderCRC {
		check := fitcrc.New()
		check.Write([]byte{sizeByte, protoVersion})
		var pv, ds [4]byte
		binary.LittleEndian.PutUint16(pv[:2], profileVersion)
		check.Write(pv[:2])
		binary.LittleEndian.PutUint32(ds[:], dataSize)
		check.Write(ds[:])
		check.Write(sig)
		if check.Sum16() != hdr.HeaderCRC {
			return FileHeader{}, fmt.Errorf("%w: header crc", ErrCrcMismatch)
		}
	}

	return hdr, nil
}
