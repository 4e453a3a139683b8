// Package errs defines the sentinel errors returned across curvefit packages.
//
// Callers should compare with errors.Is, since most errors are wrapped with
// additional context before they reach the caller.
package errs

import "errors"

// Input validation errors.
var (
	ErrInvalidOrder             = errors.New("polynomial order must be 1, 2 or 3")
	ErrInvalidFitMode           = errors.New("invalid fit mode")
	ErrInvalidCoefficientCount  = errors.New("too many coefficients for the maximum polynomial order")
	ErrNonFiniteValue           = errors.New("value must be finite")
	ErrPointNotFound            = errors.New("point not found")
	ErrDuplicatePoint           = errors.New("point already exists")
	ErrInsufficientPoints       = errors.New("insufficient relevant points for fitting")
	ErrInvalidBounds            = errors.New("invalid graph bounds")
	ErrInvalidDeltaLimits       = errors.New("invalid delta limits")
	ErrInvalidSampleCount       = errors.New("sample count must be at least 2")
	ErrUnsupportedCompression   = errors.New("unsupported compression type")
	ErrSnapshotTooShort         = errors.New("snapshot is shorter than its header")
	ErrInvalidSnapshotMagic     = errors.New("invalid snapshot magic number")
	ErrSnapshotChecksumMismatch = errors.New("snapshot checksum mismatch")
	ErrSnapshotLengthMismatch   = errors.New("snapshot payload length mismatch")
	ErrSnapshotCorrupted        = errors.New("snapshot payload corrupted")
)

// Session and storage errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStoreClosed     = errors.New("store is closed")
)
