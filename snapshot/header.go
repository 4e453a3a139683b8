package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/curvefit/endian"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
)

const (
	// HeaderSize is the fixed size of the snapshot header.
	HeaderSize = 16
	// Magic identifies a snapshot. It is always stored little-endian.
	Magic uint16 = 0xCF10

	// FlagBigEndian marks a snapshot whose header fields and payload are big-endian.
	FlagBigEndian uint8 = 0x01
)

// Header is the fixed-size prefix of a snapshot.
//
// Layout:
//
//	[0:2]   magic, little-endian
//	[2]     flags
//	[3]     compression type
//	[4:8]   stored payload length
//	[8:16]  xxHash64 of the uncompressed payload
type Header struct {
	Flags         uint8
	Compression   format.CompressionType
	PayloadLength uint32
	Checksum      uint64
}

// Engine returns the byte order selected by the flags.
func (h Header) Engine() endian.EndianEngine {
	return endian.ForFlag(h.Flags&FlagBigEndian != 0)
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.Engine()

	binary.LittleEndian.PutUint16(b[0:2], Magic)
	b[2] = h.Flags
	b[3] = uint8(h.Compression)
	engine.PutUint32(b[4:8], h.PayloadLength)
	engine.PutUint64(b[8:16], h.Checksum)

	return b
}

// ParseHeader reads the header at the start of data.
//
// Returns:
//   - Header: the parsed header
//   - error: ErrSnapshotTooShort, ErrInvalidSnapshotMagic or ErrUnsupportedCompression
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", errs.ErrSnapshotTooShort, len(data))
	}
	if magic := binary.LittleEndian.Uint16(data[0:2]); magic != Magic {
		return Header{}, fmt.Errorf("%w: 0x%04x", errs.ErrInvalidSnapshotMagic, magic)
	}

	h := Header{
		Flags:       data[2],
		Compression: format.CompressionType(data[3]),
	}
	if !h.Compression.Valid() {
		return Header{}, fmt.Errorf("%w: 0x%02x", errs.ErrUnsupportedCompression, data[3])
	}

	engine := h.Engine()
	h.PayloadLength = engine.Uint32(data[4:8])
	h.Checksum = engine.Uint64(data[8:16])

	return h, nil
}
