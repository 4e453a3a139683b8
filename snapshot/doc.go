// Package snapshot serializes curve sessions into a compact binary format.
//
// A snapshot stores the inputs of a curve model (order, fit mode, manual
// coefficients and points) but none of the derived values, which are
// recomputed on restore.
//
// # Format
//
//	+----------------+----------------------------------------+
//	| header (16 B)  | payload (compressed as the header says) |
//	+----------------+----------------------------------------+
//
// The header carries the magic number 0xCF10, a flags byte whose bit 0 selects
// big-endian encoding, the compression type, the stored payload length and an
// xxHash64 checksum of the uncompressed payload.
//
// The uncompressed payload is:
//
//	order u8 | mode u8 | manual coefficients 4×f64 | point count u32 |
//	points: { id [16]byte | x f64 | y f64 | delta f64 | flags u8 }...
//
// Point flag bit 0 marks a returning point.
//
// # Usage
//
//	data, err := snapshot.Encode(model.Snapshot())
//	if err != nil {
//	    return err
//	}
//	session, err := snapshot.Decode(data)
//	if err != nil {
//	    return err
//	}
//	err = model.Restore(session)
package snapshot
