package format

import "strings"

type (
	FitMode         uint8
	CompressionType uint8
)

const (
	FitBest       FitMode = 0x1 // FitBest computes coefficients by weighted least squares.
	FitAdjustable FitMode = 0x2 // FitAdjustable takes coefficients supplied by the user.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (m FitMode) String() string {
	switch m {
	case FitBest:
		return "best"
	case FitAdjustable:
		return "adjustable"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined fit modes.
func (m FitMode) Valid() bool {
	return m == FitBest || m == FitAdjustable
}

// ParseFitMode returns the FitMode for a case-insensitive name.
// The second result is false for unknown names.
func ParseFitMode(name string) (FitMode, bool) {
	switch strings.ToLower(name) {
	case "best":
		return FitBest, true
	case "adjustable":
		return FitAdjustable, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is a known compression type.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompressionType returns the CompressionType for a case-insensitive name.
// The second result is false for unknown names.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
