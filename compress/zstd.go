package compress

// ZstdCompressor uses Zstandard, which gives the smallest snapshots. It is the
// default for persisted sessions.
//
// The pure-Go klauspost/compress implementation is used unless the module is
// built with the gozstd tag, which switches to the cgo gozstd bindings.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
