package snapshot

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/compress"
	"github.com/arloliu/curvefit/endian"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/hash"
	"github.com/arloliu/curvefit/point"
)

// Decode parses a snapshot produced by Encode.
//
// The header is validated first, then the payload is decompressed and its
// checksum verified before any field is read.
//
// Returns:
//   - Session: the decoded session, which passes Validate
//   - error: one of the snapshot errors in package errs, or a validation error
func Decode(data []byte) (Session, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Session{}, err
	}

	stored := data[HeaderSize:]
	if uint64(len(stored)) != uint64(h.PayloadLength) {
		return Session{}, fmt.Errorf("%w: header says %d bytes, got %d",
			errs.ErrSnapshotLengthMismatch, h.PayloadLength, len(stored))
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return Session{}, err
	}
	payload, err := codec.Decompress(stored)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", errs.ErrSnapshotCorrupted, err)
	}
	if !hash.Verify(payload, h.Checksum) {
		return Session{}, errs.ErrSnapshotChecksumMismatch
	}

	s, err := parseSession(payload, h.Engine())
	if err != nil {
		return Session{}, err
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}

	return s, nil
}

func parseSession(b []byte, engine endian.EndianEngine) (Session, error) {
	if len(b) < sessionFixedSize {
		return Session{}, fmt.Errorf("%w: payload of %d bytes", errs.ErrSnapshotCorrupted, len(b))
	}

	s := Session{
		Order: int(b[0]),
		Mode:  format.FitMode(b[1]),
	}
	off := 2
	for i := range s.ManualCoefficients {
		s.ManualCoefficients[i] = math.Float64frombits(engine.Uint64(b[off:]))
		off += 8
	}
	count := engine.Uint32(b[off:])
	off += 4

	if uint64(len(b)-off) != uint64(count)*pointSize {
		return Session{}, fmt.Errorf("%w: %d points need %d bytes, got %d",
			errs.ErrSnapshotCorrupted, count, uint64(count)*pointSize, len(b)-off)
	}

	if count > 0 {
		s.Points = make([]point.Point, count)
	}
	for i := range s.Points {
		p := &s.Points[i]
		p.ID = uuid.UUID(b[off : off+16])
		off += 16
		p.Position.X = math.Float64frombits(engine.Uint64(b[off:]))
		p.Position.Y = math.Float64frombits(engine.Uint64(b[off+8:]))
		p.Delta = math.Float64frombits(engine.Uint64(b[off+16:]))
		off += 24
		p.Returning = b[off]&pointFlagReturning != 0
		off++
	}

	return s, nil
}
