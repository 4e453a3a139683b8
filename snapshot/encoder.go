package snapshot

import (
	"fmt"
	"math"

	"github.com/arloliu/curvefit/compress"
	"github.com/arloliu/curvefit/endian"
	"github.com/arloliu/curvefit/internal/hash"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/internal/pool"
)

const (
	// sessionFixedSize covers order, mode, manual coefficients and point count.
	sessionFixedSize = 1 + 1 + 4*8 + 4
	// pointSize covers ID, x, y, delta and flags.
	pointSize = 16 + 3*8 + 1

	pointFlagReturning uint8 = 0x01
)

// Encode serializes s into a self-describing snapshot.
//
// Parameters:
//   - s: the session to encode; it must pass Validate
//   - opts: WithCompression, WithBigEndian
//
// Returns:
//   - []byte: header followed by the (compressed) payload
//   - error: validation, option or compression error
//
// Example:
//
//	data, err := snapshot.Encode(model.Snapshot(), snapshot.WithCompression(format.CompressionS2))
func Encode(s Session, opts ...EncoderOption) ([]byte, error) {
	cfg := defaultEncoderConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(s.Points)) > math.MaxUint32 {
		return nil, fmt.Errorf("too many points: %d", len(s.Points))
	}

	codec, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return nil, err
	}

	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)

	engine := endian.ForFlag(cfg.BigEndian)
	bb.Grow(sessionFixedSize + pointSize*len(s.Points))
	bb.B = appendSession(bb.B, engine, s)

	payload := bb.Bytes()
	packed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress snapshot payload: %w", err)
	}

	h := Header{
		Compression:   cfg.Compression,
		PayloadLength: uint32(len(packed)), //nolint:gosec // bounded by the point count check
		Checksum:      hash.Checksum(payload),
	}
	if cfg.BigEndian {
		h.Flags |= FlagBigEndian
	}

	// packed may alias the pooled buffer, so copy before the buffer is returned.
	out := make([]byte, 0, HeaderSize+len(packed))
	out = append(out, h.Bytes()...)
	out = append(out, packed...)

	return out, nil
}

func appendSession(b []byte, engine endian.EndianEngine, s Session) []byte {
	b = append(b, uint8(s.Order), uint8(s.Mode)) //nolint:gosec // order validated to [1, 3]
	for _, c := range s.ManualCoefficients {
		b = engine.AppendUint64(b, math.Float64bits(c))
	}
	b = engine.AppendUint32(b, uint32(len(s.Points))) //nolint:gosec // checked by Encode

	for _, p := range s.Points {
		b = append(b, p.ID[:]...)
		b = engine.AppendUint64(b, math.Float64bits(p.Position.X))
		b = engine.AppendUint64(b, math.Float64bits(p.Position.Y))
		b = engine.AppendUint64(b, math.Float64bits(p.Delta))

		var flags uint8
		if p.Returning {
			flags |= pointFlagReturning
		}
		b = append(b, flags)
	}

	return b
}
