package valuestore

import (
	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/internal/crc32c"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// ValueStore is the read-side view of a value store: something that can
// resolve a key to its stored bytes. PlainValueStore and IndexedValueStore
// both implement it but take their key differently — see the package doc.
type ValueStore interface {
	Kind() Kind
}

// PlainValueStore reads a concatenation of length-prefixed values. A key is
// always the byte offset of a value's own length prefix; the caller must
// always state how many bytes to read, since nothing here parses the
// prefix back out.
type PlainValueStore struct {
	r *source.Reader
}

func (s *PlainValueStore) Kind() Kind { return KindPlain }

// GetData returns the size bytes starting at offset within the store's
// data region.
func (s *PlainValueStore) GetData(offset uint64, size uint64) ([]byte, error) {
	if source.Offset(offset)+source.Offset(size) > source.Offset(s.r.Size()) {
		return nil, errs.ErrValueIdxOutOfRange
	}

	buf := make([]byte, size)
	if err := s.r.NewStreamAt(source.Offset(offset)).ReadExact(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// IndexedValueStore reads a concatenation of raw, unframed values located
// through an offsets table parsed from the tail. A key is a position into
// that table.
type IndexedValueStore struct {
	r       *source.Reader
	offsets []uint64
}

func (s *IndexedValueStore) Kind() Kind { return KindIndexed }

// ValueCount reports the number of distinct values the store holds.
func (s *IndexedValueStore) ValueCount() int {
	if len(s.offsets) == 0 {
		return 0
	}

	return len(s.offsets) - 1
}

// GetData returns the value at position id. When size is nil, the length is
// derived from the gap to the next value's offset; otherwise size overrides
// it, letting a caller read a prefix of a value.
func (s *IndexedValueStore) GetData(id uint64, size *uint64) ([]byte, error) {
	idx := int(id)
	if idx < 0 || idx+1 >= len(s.offsets) {
		return nil, errs.ErrValueIdxOutOfRange
	}

	start := s.offsets[idx]
	length := s.offsets[idx+1] - start
	if size != nil {
		length = *size
	}

	buf := make([]byte, length)
	if err := s.r.NewStreamAt(source.Offset(start)).ReadExact(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// tailInfo is the decoded form of a value store's tail block, common to
// both kinds: dataSize is always present, indexedOffsets is only populated
// for KindIndexed.
type tailInfo struct {
	kind           Kind
	dataSize       uint64
	indexedOffsets []uint64
}

func decodeTail(buf []byte) (tailInfo, error) {
	if len(buf) < 1 {
		return tailInfo{}, errs.ErrInvalidHeaderSize
	}

	kind := Kind(buf[0])
	switch kind {
	case KindPlain:
		if len(buf) != 1+8 {
			return tailInfo{}, errs.ErrInvalidHeaderSize
		}

		return tailInfo{kind: kind, dataSize: bytesize.ReadUint(buf[1:9], bytesize.U8)}, nil

	case KindIndexed:
		return decodeIndexedTail(buf)

	default:
		return tailInfo{}, errs.ErrUnknownValueStoreKind
	}
}

func decodeIndexedTail(buf []byte) (tailInfo, error) {
	const fixedLen = 1 + 8 + 1 // kind + value_count + offset_size
	if len(buf) < fixedLen {
		return tailInfo{}, errs.ErrInvalidHeaderSize
	}

	valueCount := bytesize.ReadUint(buf[1:9], bytesize.U8)
	if valueCount == 0 {
		return tailInfo{}, errs.NewFormat(-1, "indexed value store declares value_count 0")
	}

	offsetSize, err := bytesize.FromInt(int(buf[9]))
	if err != nil {
		return tailInfo{}, err
	}

	pos := fixedLen
	if len(buf) < pos+int(offsetSize) {
		return tailInfo{}, errs.ErrInvalidHeaderSize
	}
	dataSize := bytesize.ReadUint(buf[pos:pos+int(offsetSize)], offsetSize)
	pos += int(offsetSize)

	wantLen := pos + int(offsetSize)*int(valueCount-1)
	if len(buf) != wantLen {
		return tailInfo{}, errs.ErrInvalidHeaderSize
	}

	offsets := make([]uint64, valueCount+1)
	for i := uint64(0); i < valueCount-1; i++ {
		off := bytesize.ReadUint(buf[pos:pos+int(offsetSize)], offsetSize)
		pos += int(offsetSize)
		if off < offsets[i] || off > dataSize {
			return tailInfo{}, errs.ErrNonMonotonicOffsets
		}
		offsets[i+1] = off
	}
	offsets[valueCount] = dataSize

	return tailInfo{kind: KindIndexed, dataSize: dataSize, indexedOffsets: offsets}, nil
}

// ParseAt parses the value store located by ptr within r — an entry of a
// Directory pack's value_store_ptr table — and returns its read-side view.
// Unlike a cluster tail, both the data block and the tail block here carry
// their own independent CRC-32C trailer.
func ParseAt(r *source.Reader, ptr pack.SizedOffset) (ValueStore, error) {
	info, err := blockparser.ParseSizedBlock(r, ptr.Offset, int(ptr.Size), blockparser.CheckCrc32, decodeTail)
	if err != nil {
		return nil, err
	}

	tailOffset := ptr.Offset
	dataEnd := tailOffset - 4
	if dataEnd < source.Offset(info.dataSize) {
		return nil, errs.NewFormat(int64(tailOffset), "value store data size exceeds its own tail offset")
	}
	dataStart := dataEnd - source.Offset(info.dataSize)

	buf := make([]byte, int(dataEnd-dataStart)+4)
	if err := r.NewStreamAt(dataStart).ReadExact(buf); err != nil {
		return nil, err
	}
	if !crc32c.Verify(buf) {
		return nil, errs.ErrInvalidBlockCRC
	}

	dataReader := r.CreateSubReader(dataStart, &dataEnd)

	switch info.kind {
	case KindPlain:
		return &PlainValueStore{r: dataReader}, nil
	case KindIndexed:
		return &IndexedValueStore{r: dataReader, offsets: info.indexedOffsets}, nil
	default:
		return nil, errs.ErrUnknownValueStoreKind
	}
}
