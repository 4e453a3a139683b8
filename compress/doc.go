// Package compress provides the codecs used for session snapshot payloads.
//
// Four algorithms are available, selected by format.CompressionType:
//
//   - None: payload stored as is
//   - Zstd: best ratio (klauspost/compress, or valyala/gozstd with the gozstd build tag)
//   - S2: fastest (klauspost/compress/s2)
//   - LZ4: fast block compression (pierrec/lz4)
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// All codecs are stateless values that pool their internal encoders, so the
// instances returned by GetCodec may be shared across goroutines.
package compress
