package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/curvefit/errs"
)

// S2Compressor stores snapshot payloads as S2 blocks written by the "better"
// encoder.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes a snapshot payload as an S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress decodes an S2 block. The block header records the decoded size,
// which is checked against maxDecodedSize before anything is allocated.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n > maxDecodedSize {
		return nil, fmt.Errorf("%w: s2 block decodes to %d bytes, limit %d", errs.ErrSnapshotCorrupted, n, maxDecodedSize)
	}

	return s2.Decode(nil, data)
}
