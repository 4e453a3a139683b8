package snapshot

import (
	"fmt"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/options"
)

// EncoderConfig controls how a session is serialized.
type EncoderConfig struct {
	Compression format.CompressionType
	BigEndian   bool
}

func defaultEncoderConfig() EncoderConfig {
	return EncoderConfig{Compression: format.CompressionZstd}
}

// EncoderOption is a functional option for Encode.
type EncoderOption = options.Option[*EncoderConfig]

// WithCompression selects the payload compression. The default is Zstd.
func WithCompression(compression format.CompressionType) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		if !compression.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compression)
		}
		cfg.Compression = compression

		return nil
	})
}

// WithBigEndian writes header fields and payload big-endian.
func WithBigEndian() EncoderOption {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.BigEndian = true
	})
}
