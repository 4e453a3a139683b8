package snapshot

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/hash"
	"github.com/arloliu/curvefit/point"
)

func sampleSession() Session {
	return Session{
		Order:              2,
		Mode:               format.FitAdjustable,
		ManualCoefficients: [4]float64{1.5, -2, 0.25, 0},
		Points: []point.Point{
			{ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Position: point.Position{X: 1, Y: 2}, Delta: 0.8},
			{ID: uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8"), Position: point.Position{X: -3.5, Y: 9.75}, Delta: 0.01, Returning: true},
			{ID: uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8"), Position: point.Position{X: 42, Y: -7}, Delta: 10},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, ct := range compressions {
		for _, bigEndian := range []bool{false, true} {
			name := ct.String()
			opts := []EncoderOption{WithCompression(ct)}
			if bigEndian {
				name += "/big-endian"
				opts = append(opts, WithBigEndian())
			}

			t.Run(name, func(t *testing.T) {
				want := sampleSession()

				data, err := Encode(want, opts...)
				require.NoError(t, err)

				h, err := ParseHeader(data)
				require.NoError(t, err)
				require.Equal(t, ct, h.Compression)
				require.Equal(t, bigEndian, h.Flags&FlagBigEndian != 0)

				got, err := Decode(data)
				require.NoError(t, err)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("session mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestRoundTrip_NoPoints(t *testing.T) {
	want := Session{Order: 1, Mode: format.FitBest}

	data, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_DefaultsToZstd(t *testing.T) {
	data, err := Encode(sampleSession())
	require.NoError(t, err)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, h.Compression)
	require.Equal(t, uint32(len(data)-HeaderSize), h.PayloadLength)
}

func TestEncode_UncompressedLayout(t *testing.T) {
	s := sampleSession()
	data, err := Encode(s, WithCompression(format.CompressionNone))
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+sessionFixedSize+pointSize*len(s.Points))

	require.Equal(t, Magic, binary.LittleEndian.Uint16(data[0:2]))
	payload := data[HeaderSize:]
	require.Equal(t, uint8(2), payload[0])
	require.Equal(t, uint8(format.FitAdjustable), payload[1])
	require.Equal(t, 1.5, math.Float64frombits(binary.LittleEndian.Uint64(payload[2:10])))
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(payload[34:38]))
}

func TestEncode_Errors(t *testing.T) {
	t.Run("invalid order", func(t *testing.T) {
		s := sampleSession()
		s.Order = 4
		_, err := Encode(s)
		require.ErrorIs(t, err, errs.ErrInvalidOrder)
	})

	t.Run("invalid mode", func(t *testing.T) {
		s := sampleSession()
		s.Mode = 0
		_, err := Encode(s)
		require.ErrorIs(t, err, errs.ErrInvalidFitMode)
	})

	t.Run("non-finite coefficient", func(t *testing.T) {
		s := sampleSession()
		s.ManualCoefficients[3] = math.Inf(1)
		_, err := Encode(s)
		require.ErrorIs(t, err, errs.ErrNonFiniteValue)
	})

	t.Run("non-finite point", func(t *testing.T) {
		s := sampleSession()
		s.Points[1].Position.Y = math.NaN()
		_, err := Encode(s)
		require.ErrorIs(t, err, errs.ErrNonFiniteValue)
	})

	t.Run("unknown compression", func(t *testing.T) {
		_, err := Encode(sampleSession(), WithCompression(format.CompressionType(9)))
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})
}

func TestDecode_Errors(t *testing.T) {
	valid, err := Encode(sampleSession(), WithCompression(format.CompressionNone))
	require.NoError(t, err)

	clone := func() []byte { return append([]byte(nil), valid...) }

	tests := []struct {
		name   string
		mutate func() []byte
		err    error
	}{
		{
			name:   "too short",
			mutate: func() []byte { return valid[:HeaderSize-1] },
			err:    errs.ErrSnapshotTooShort,
		},
		{
			name: "bad magic",
			mutate: func() []byte {
				b := clone()
				b[0] ^= 0xff
				return b
			},
			err: errs.ErrInvalidSnapshotMagic,
		},
		{
			name: "unknown compression",
			mutate: func() []byte {
				b := clone()
				b[3] = 0x7f
				return b
			},
			err: errs.ErrUnsupportedCompression,
		},
		{
			name:   "truncated payload",
			mutate: func() []byte { return valid[:len(valid)-1] },
			err:    errs.ErrSnapshotLengthMismatch,
		},
		{
			name: "flipped payload bit",
			mutate: func() []byte {
				b := clone()
				b[len(b)-5] ^= 0x01
				return b
			},
			err: errs.ErrSnapshotChecksumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.mutate())
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDecode_CorruptCompressedPayload(t *testing.T) {
	data, err := Encode(sampleSession(), WithCompression(format.CompressionZstd))
	require.NoError(t, err)

	data[HeaderSize] ^= 0xff // breaks the zstd frame magic
	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrSnapshotCorrupted)
}

func TestDecode_PointCountMismatch(t *testing.T) {
	// Build a payload whose count disagrees with its size but whose checksum is
	// valid, so only the structural check can catch it.
	s := sampleSession()
	payload := appendSession(nil, binary.LittleEndian, s)
	binary.LittleEndian.PutUint32(payload[34:38], 7)

	h := Header{Compression: format.CompressionNone, PayloadLength: uint32(len(payload))}
	h.Checksum = hash.Checksum(payload)
	data := append(h.Bytes(), payload...)

	_, err := Decode(data)
	require.ErrorIs(t, err, errs.ErrSnapshotCorrupted)
}

func TestHeader_RoundTrip(t *testing.T) {
	for _, flags := range []uint8{0, FlagBigEndian} {
		want := Header{Flags: flags, Compression: format.CompressionS2, PayloadLength: 1234, Checksum: 0xdeadbeefcafef00d}
		got, err := ParseHeader(want.Bytes())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

