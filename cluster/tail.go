package cluster

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

// TailFieldsSize is the width of a cluster tail's fixed header
// (compression, offset_size, blob_count), not counting its two usized size
// fields or its offsets array.
const TailFieldsSize = 4

// Tail is the trailer a Cluster's raw or compressed data region ends with:
// enough to locate every blob within the decompressed body without reading
// the body itself.
type Tail struct {
	Compression format.CompressionType
	OffsetSize  bytesize.ByteSize
	RawDataSize source.Size
	DataSize    source.Size

	// Offsets holds BlobCount()+1 boundaries into the decompressed data
	// region: blob i occupies [Offsets[i], Offsets[i+1]). Offsets[0] is
	// always 0 and the last entry is always DataSize; only the entries in
	// between are actually present on the wire.
	Offsets []source.Size
}

// BlobCount reports the number of blobs the tail's offsets describe.
func (t Tail) BlobCount() int {
	if len(t.Offsets) == 0 {
		return 0
	}

	return len(t.Offsets) - 1
}

// variableLen returns how many bytes the tail's two usized size fields plus
// its (blobCount-1) stored offsets occupy.
func variableLen(offsetSize bytesize.ByteSize, blobCount int) int {
	return int(offsetSize) * (1 + blobCount)
}

func parseTail(data []byte) (Tail, source.Size, error) {
	if len(data) < TailFieldsSize {
		return Tail{}, 0, errs.ErrInvalidHeaderSize
	}

	compression := format.CompressionType(data[0])
	if !compression.Valid() {
		return Tail{}, 0, errs.ErrUnknownCompression
	}

	offsetSize, err := bytesize.FromInt(int(data[1]))
	if err != nil {
		return Tail{}, 0, err
	}

	blobCount := int(bytesize.ReadUint(data[2:4], bytesize.U2))
	if blobCount < 1 {
		return Tail{}, 0, errs.NewFormat(-1, "cluster tail declares blob_count %d, want >= 1", blobCount)
	}

	if len(data) != TailFieldsSize+variableLen(offsetSize, blobCount) {
		return Tail{}, 0, errs.ErrInvalidHeaderSize
	}

	pos := TailFieldsSize
	rawDataSize := source.Size(bytesize.ReadUint(data[pos:pos+int(offsetSize)], offsetSize))
	pos += int(offsetSize)
	dataSize := source.Size(bytesize.ReadUint(data[pos:pos+int(offsetSize)], offsetSize))
	pos += int(offsetSize)

	offsets := make([]source.Size, blobCount+1)
	for i := 0; i < blobCount-1; i++ {
		off := source.Size(bytesize.ReadUint(data[pos:pos+int(offsetSize)], offsetSize))
		pos += int(offsetSize)
		if off <= offsets[i] || off > dataSize {
			return Tail{}, 0, errs.ErrNonMonotonicOffsets
		}
		offsets[i+1] = off
	}
	offsets[blobCount] = dataSize

	if compression == format.CompressionNone && rawDataSize != dataSize {
		return Tail{}, 0, errs.NewFormat(-1, "uncompressed cluster raw_data_size (%d) != data_size (%d)", rawDataSize, dataSize)
	}

	tail := Tail{
		Compression: compression,
		OffsetSize:  offsetSize,
		RawDataSize: rawDataSize,
		DataSize:    dataSize,
		Offsets:     offsets,
	}

	return tail, rawDataSize, nil
}

// ParseTailAt reads the tailSize-byte cluster tail starting at offset within
// r — tailSize is the Size half of the cluster's entry in a Content pack's
// cluster_ptr table — and returns a Reader over the raw data region that
// precedes it, sized to RawDataSize, alongside the decoded tail. Unlike
// every other data block in the engine, a cluster tail carries no CRC-32C
// trailer of its own: the pack body it lives in is already covered by the
// pack's whole-file BLAKE3 check, and per-blob integrity is the caller's
// concern, not the container format's.
func ParseTailAt(r *source.Reader, offset source.Offset, tailSize int) (*source.Reader, Tail, error) {
	buf := make([]byte, tailSize)
	if err := r.NewStreamAt(offset).ReadExact(buf); err != nil {
		return nil, Tail{}, err
	}

	tail, rawDataSize, err := parseTail(buf)
	if err != nil {
		return nil, Tail{}, err
	}

	if source.Offset(rawDataSize) > offset {
		return nil, Tail{}, errs.NewFormat(int64(offset), "cluster raw data size exceeds its own tail offset")
	}
	dataEnd := offset
	dataRegion := r.CreateSubReader(offset-source.Offset(rawDataSize), &dataEnd)

	return dataRegion, tail, nil
}

// Bytes serialises t's field block: the fixed header, the two usized size
// fields, and the blobCount-1 stored offsets. The implicit leading 0 and
// trailing DataSize entries are never written.
func (t Tail) Bytes() []byte {
	blobCount := t.BlobCount()
	buf := make([]byte, TailFieldsSize+variableLen(t.OffsetSize, blobCount))
	buf[0] = byte(t.Compression)
	buf[1] = byte(t.OffsetSize)
	bytesize.WriteUint(buf[2:4], uint64(blobCount), bytesize.U2)

	pos := TailFieldsSize
	bytesize.WriteUint(buf[pos:pos+int(t.OffsetSize)], uint64(t.RawDataSize), t.OffsetSize)
	pos += int(t.OffsetSize)
	bytesize.WriteUint(buf[pos:pos+int(t.OffsetSize)], uint64(t.DataSize), t.OffsetSize)
	pos += int(t.OffsetSize)

	for i := 1; i < blobCount; i++ {
		bytesize.WriteUint(buf[pos:pos+int(t.OffsetSize)], uint64(t.Offsets[i]), t.OffsetSize)
		pos += int(t.OffsetSize)
	}

	return buf
}

// AppendBlock appends t's field block to dst. Unlike every other data
// block in the engine, a cluster tail is not followed by a CRC-32C.
func (t Tail) AppendBlock(dst []byte) []byte {
	return append(dst, t.Bytes()...)
}
