package valuestore

import (
	"io"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// Creator is the write-side counterpart of ValueStore: something that has
// accumulated deduplicated values and can render its data and tail blocks.
type Creator interface {
	Kind() Kind
	Idx() format.ValueStoreIdx
	AppendData(dst []byte) []byte
	AppendTail(dst []byte) []byte
}

// plainMaxValueLen is the largest value a PlainValueStore can hold: its
// length prefix is a single byte.
const plainMaxValueLen = 255

// PlainValueStoreCreator accumulates values as length-prefixed byte strings;
// a ValueRef resolves to the byte offset of its length prefix.
type PlainValueStoreCreator struct {
	idx  format.ValueStoreIdx
	base baseStore
}

// NewPlainValueStoreCreator returns an empty PlainValueStoreCreator bound to
// the store slot idx.
func NewPlainValueStoreCreator(idx format.ValueStoreIdx) *PlainValueStoreCreator {
	return &PlainValueStoreCreator{idx: idx}
}

// AddValue deduplicates data against every value already added and returns
// a ref to its (possibly shared) key.
func (c *PlainValueStoreCreator) AddValue(data []byte) (ValueRef, error) {
	if len(data) > plainMaxValueLen {
		return ValueRef{}, errs.NewArg("plain value store entry too large (%d bytes, max %d)", len(data), plainMaxValueLen)
	}

	return c.base.addValue(data, plainFixOffset), nil
}

// Size returns the store's on-disk data size: every value's bytes plus its
// 1-byte length prefix.
func (c *PlainValueStoreCreator) Size() uint64 {
	return uint64(c.base.size) + uint64(len(c.base.sorted))
}

// KeySize returns the byte width needed to encode an offset into this
// store, used to size an entry property that indirects through it.
func (c *PlainValueStoreCreator) KeySize() bytesize.ByteSize { return bytesize.NeededFor(c.Size()) }

func (c *PlainValueStoreCreator) Idx() format.ValueStoreIdx { return c.idx }
func (c *PlainValueStoreCreator) Kind() Kind                { return KindPlain }

// AppendData appends every value, in sorted order, as [len_byte][bytes], to
// dst.
func (c *PlainValueStoreCreator) AppendData(dst []byte) []byte {
	for _, slot := range c.base.sorted {
		data := c.base.data[slot.dataIdx]
		dst = append(dst, byte(len(data)))
		dst = append(dst, data...)
	}

	return dst
}

// AppendTail appends the store's tail fields (everything after the kind
// byte): just the total data size, as a fixed 8-byte field.
func (c *PlainValueStoreCreator) AppendTail(dst []byte) []byte {
	return bytesize.AppendUint(dst, c.Size(), bytesize.U8)
}

// IndexedValueStoreCreator accumulates values as raw concatenated bytes; a
// ValueRef resolves to the value's position, looked up through an offsets
// table carried in the tail.
type IndexedValueStoreCreator struct {
	idx  format.ValueStoreIdx
	base baseStore
}

// NewIndexedValueStoreCreator returns an empty IndexedValueStoreCreator
// bound to the store slot idx.
func NewIndexedValueStoreCreator(idx format.ValueStoreIdx) *IndexedValueStoreCreator {
	return &IndexedValueStoreCreator{idx: idx}
}

// AddValue deduplicates data against every value already added and returns
// a ref to its (possibly shared) position.
func (c *IndexedValueStoreCreator) AddValue(data []byte) ValueRef {
	return c.base.addValue(data, indexedFixOffset)
}

// KeySize returns the byte width needed to encode a position into this
// store, used to size an entry property that indirects through it.
func (c *IndexedValueStoreCreator) KeySize() bytesize.ByteSize {
	return bytesize.NeededFor(uint64(len(c.base.sorted)))
}

func (c *IndexedValueStoreCreator) Idx() format.ValueStoreIdx { return c.idx }
func (c *IndexedValueStoreCreator) Kind() Kind                { return KindIndexed }

// AppendData appends every value's raw bytes, in sorted order, to dst.
func (c *IndexedValueStoreCreator) AppendData(dst []byte) []byte {
	for _, slot := range c.base.sorted {
		dst = append(dst, c.base.data[slot.dataIdx]...)
	}

	return dst
}

// AppendTail appends the store's tail fields: the value count, the byte
// width chosen for the offsets that follow, the total data size, and the
// start offset of every value but the first (whose offset, 0, is never
// stored).
func (c *IndexedValueStoreCreator) AppendTail(dst []byte) []byte {
	n := len(c.base.sorted)
	dst = bytesize.AppendUint(dst, uint64(n), bytesize.U8)

	dataSize := uint64(c.base.size)
	offsetSize := bytesize.NeededFor(dataSize)
	dst = append(dst, byte(offsetSize))
	dst = bytesize.AppendUint(dst, dataSize, offsetSize)

	var offset uint64
	for i := 0; i < n-1; i++ {
		offset += uint64(len(c.base.data[c.base.sorted[i].dataIdx]))
		dst = bytesize.AppendUint(dst, offset, offsetSize)
	}

	return dst
}

// AppendBlock writes c's data block (CRC-32C checked) immediately followed
// by its tail block (a leading kind byte plus c's own tail fields, also
// CRC-32C checked) to w. startOffset is the absolute position w is about to
// write at. The returned SizedOffset locates the tail exactly as a
// Directory pack's value_store_ptr table stores it: Offset is the tail's
// start, Size is its field-only length (kind byte included, CRC excluded).
func AppendBlock(w io.Writer, startOffset int64, c Creator) (pack.SizedOffset, error) {
	dataBlock := blockparser.AppendSizedBlock(nil, c.AppendData(nil), blockparser.CheckCrc32)
	if _, err := w.Write(dataBlock); err != nil {
		return pack.SizedOffset{}, err
	}

	tailOffset := startOffset + int64(len(dataBlock))

	tailFields := append([]byte{byte(c.Kind())}, c.AppendTail(nil)...)
	tailBlock := blockparser.AppendSizedBlock(nil, tailFields, blockparser.CheckCrc32)
	if _, err := w.Write(tailBlock); err != nil {
		return pack.SizedOffset{}, err
	}

	return pack.NewSizedOffset(source.Offset(tailOffset), source.Size(len(tailFields))), nil
}
