// Package endian selects the byte order used inside snapshot payloads.
//
// Snapshots are little-endian by default. A header flag records when a
// payload was written big-endian, so readers on any host decode it correctly:
//
//	engine := endian.ForFlag(header.Flags & snapshot.FlagBigEndian != 0)
//	x := math.Float64frombits(engine.Uint64(payload[off:]))
package endian

import "encoding/binary"

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder, so one
// value serves both the encoder, which appends, and the decoder, which reads.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ForFlag returns the big-endian engine when bigEndian is set and the
// little-endian engine otherwise.
func ForFlag(bigEndian bool) EndianEngine {
	if bigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine.Uint16([]byte{0x01, 0x00}) == 0x0100
}
