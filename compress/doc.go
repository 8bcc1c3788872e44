// Package compress provides the four cluster-body compression codecs a
// Jubako pack can use: None, Lz4, Lzma, and Zstd (format.CompressionType).
//
// A cluster is compressed as a whole, in memory, by the writer, and
// decompressed lazily, a range at a time, by the reader. Codec therefore
// exposes two distinct capabilities instead of the usual Compress/
// Decompress pair:
//
//   - Compress(data) — a one-shot, whole-buffer compression used when a
//     ClusterCreator finalises a full cluster body.
//   - NewDecoder(r) — a streaming io.Reader used to back a
//     source.DecodeSource, so a cluster's blobs can be addressed as they
//     are decoded rather than only after the whole body is inflated.
//
// None trivially satisfies both with an identity transform. Lz4 wraps
// github.com/pierrec/lz4/v4's frame format, Zstd wraps
// github.com/klauspost/compress/zstd, and Lzma wraps the raw (non-xz)
// stream format from github.com/ulikunitz/xz/lzma.
package compress
