package entry

import (
	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/crc32c"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// storeKind is the leading byte of an EntryStore's tail. Only Plain is
// implemented — Ref and Full stores (indirection tables pointing into a
// shared entry pool) are reserved tags the format defines but this engine
// never emits and therefore never needs to read.
type storeKind uint8

const (
	storeKindPlain storeKind = 0
	storeKindRef   storeKind = 1
	storeKindFull  storeKind = 2
)

// EntryStore holds a Directory pack's fixed-width entry records: a
// resolved Layout plus the byte region each entry is sliced out of. Like a
// ValueStore, it is two independently CRC-32C checked blocks: the entry
// data followed by its own check, then the tail (layout definition plus
// the data's size) followed by its own check.
type EntryStore struct {
	layout Layout
	r      *source.Reader
}

// Layout returns the store's resolved Layout.
func (s *EntryStore) Layout() Layout { return s.layout }

// EntryCount reports how many fixed-width records the store holds.
func (s *EntryStore) EntryCount() int {
	if s.layout.EntrySize == 0 {
		return 0
	}

	return int(s.r.Size()) / s.layout.EntrySize
}

// GetEntry returns the raw fixed-width bytes of entry idx, along with the
// Variant it selects.
func (s *EntryStore) GetEntry(idx format.EntryIdx) ([]byte, Variant, error) {
	count := s.EntryCount()
	if int(idx) >= count {
		return nil, Variant{}, errs.ErrEntryIdxOutOfRange
	}

	size := s.layout.EntrySize
	buf := make([]byte, size)
	off := source.Offset(int(idx) * size)
	if err := s.r.NewStreamAt(off).ReadExact(buf); err != nil {
		return nil, Variant{}, err
	}

	variantID := 0
	if s.layout.HasVariantID() {
		variantID = int(buf[0])
	}
	if variantID >= len(s.layout.Variants) {
		return nil, Variant{}, errs.NewFormat(int64(off), "variant id %d out of range", variantID)
	}

	return buf, s.layout.Variants[variantID], nil
}

type entryStoreTail struct {
	layout   Layout
	dataSize uint64
}

func decodeEntryStoreTail(buf []byte) (entryStoreTail, error) {
	if len(buf) < 1+2+1+1 {
		return entryStoreTail{}, errs.ErrInvalidHeaderSize
	}
	if storeKind(buf[0]) != storeKindPlain {
		return entryStoreTail{}, errs.NewFormat(-1, "unsupported entry store kind %d", buf[0])
	}

	entrySize := int(bytesize.ReadUint(buf[1:3], bytesize.U2))
	variantCount := int(buf[3])
	propertyCount := int(buf[4])

	raw, n, err := ParseRawProperties(buf[5:], propertyCount)
	if err != nil {
		return entryStoreTail{}, err
	}
	pos := 5 + n

	layout, err := BuildLayout(raw, entrySize)
	if err != nil {
		return entryStoreTail{}, err
	}
	if len(layout.Variants) != variantCount {
		return entryStoreTail{}, errs.NewFormat(-1, "entry store declares %d variants but layout resolves %d", variantCount, len(layout.Variants))
	}

	if len(buf) != pos+8 {
		return entryStoreTail{}, errs.ErrInvalidHeaderSize
	}
	dataSize := bytesize.ReadUint(buf[pos:pos+8], bytesize.U8)

	return entryStoreTail{layout: layout, dataSize: dataSize}, nil
}

// ParseEntryStore parses the entry store located by ptr within r, an entry
// of a Directory pack's entry_store_ptr table.
func ParseEntryStore(r *source.Reader, ptr pack.SizedOffset) (*EntryStore, error) {
	tail, err := blockparser.ParseSizedBlock(r, ptr.Offset, int(ptr.Size), blockparser.CheckCrc32, decodeEntryStoreTail)
	if err != nil {
		return nil, err
	}

	tailOffset := ptr.Offset
	dataEnd := tailOffset - 4
	if dataEnd < source.Offset(tail.dataSize) {
		return nil, errs.NewFormat(int64(tailOffset), "entry store data size exceeds its own tail offset")
	}
	dataStart := dataEnd - source.Offset(tail.dataSize)

	buf := make([]byte, int(dataEnd-dataStart)+4)
	if err := r.NewStreamAt(dataStart).ReadExact(buf); err != nil {
		return nil, err
	}
	if !crc32c.Verify(buf) {
		return nil, errs.ErrInvalidBlockCRC
	}

	if tail.layout.EntrySize > 0 && tail.dataSize%uint64(tail.layout.EntrySize) != 0 {
		return nil, errs.NewFormat(int64(tailOffset), "entry store data size is not a multiple of its entry size")
	}

	dataReader := r.CreateSubReader(dataStart, &dataEnd)

	return &EntryStore{layout: tail.layout, r: dataReader}, nil
}
