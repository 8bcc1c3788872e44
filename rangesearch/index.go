// Package rangesearch implements a Directory pack's named, possibly
// ordered sub-ranges of an EntryStore (spec.md §4.6): an Index names
// [offset, offset+count) within one EntryStore and records the property
// that range is ordered by, if any; a Finder walks it by id or by
// Comparator, choosing binary search when the range is ordered and a
// linear scan otherwise.
package rangesearch

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/entry"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// indexHeaderFixedSize is the width of an IndexHeader's fixed fields,
// before its length-prefixed name.
const indexHeaderFixedSize = 4 + 4 + 4 + format.ContentAddressSize + 1 + 1

// IndexHeader is one Directory pack index's on-disk descriptor.
type IndexHeader struct {
	StoreId       format.EntryStoreIdx
	EntryCount    uint32
	EntryOffset   format.EntryIdx
	ExtraData     format.ContentAddress
	IndexProperty uint8
	Name          string
}

// ParseIndexHeader decodes one IndexHeader from the front of buf, returning
// the number of bytes consumed so a caller can walk a back-to-back table of
// them.
func ParseIndexHeader(buf []byte) (IndexHeader, int, error) {
	if len(buf) < indexHeaderFixedSize {
		return IndexHeader{}, 0, errs.ErrTruncated
	}

	h := IndexHeader{
		StoreId:     format.EntryStoreIdx(bytesize.ReadUint(buf[0:4], bytesize.U4)),
		EntryCount:  uint32(bytesize.ReadUint(buf[4:8], bytesize.U4)),
		EntryOffset: format.EntryIdx(bytesize.ReadUint(buf[8:12], bytesize.U4)),
		ExtraData:   format.ParseContentAddress(buf[12 : 12+format.ContentAddressSize]),
	}
	pos := 12 + format.ContentAddressSize
	h.IndexProperty = buf[pos]
	pos++

	nameLen := int(buf[pos])
	pos++
	if len(buf) < pos+nameLen {
		return IndexHeader{}, 0, errs.ErrTruncated
	}
	h.Name = string(buf[pos : pos+nameLen])
	pos += nameLen

	return h, pos, nil
}

// AppendTo appends h's wire form to dst.
func (h IndexHeader) AppendTo(dst []byte) []byte {
	dst = bytesize.AppendUint(dst, uint64(h.StoreId), bytesize.U4)
	dst = bytesize.AppendUint(dst, uint64(h.EntryCount), bytesize.U4)
	dst = bytesize.AppendUint(dst, uint64(h.EntryOffset), bytesize.U4)
	dst = h.ExtraData.AppendTo(dst)
	dst = append(dst, h.IndexProperty)
	dst = append(dst, byte(len(h.Name)))
	dst = append(dst, h.Name...)

	return dst
}

// Index names a contiguous range within one EntryStore and exposes a
// Finder over it.
type Index struct {
	header IndexHeader
	store  *entry.EntryStore
}

// NewIndex binds header to the EntryStore it names.
func NewIndex(header IndexHeader, store *entry.EntryStore) *Index {
	return &Index{header: header, store: store}
}

func (i *Index) Name() string                     { return i.header.Name }
func (i *Index) EntryCount() uint32               { return i.header.EntryCount }
func (i *Index) EntryOffset() format.EntryIdx     { return i.header.EntryOffset }
func (i *Index) IndexProperty() uint8             { return i.header.IndexProperty }
func (i *Index) ExtraData() format.ContentAddress { return i.header.ExtraData }
func (i *Index) Store() *entry.EntryStore         { return i.store }

// GetFinder returns a Finder over i's named range.
func (i *Index) GetFinder() *Finder {
	return NewFinder(i.store, i.header.EntryOffset, i.header.EntryCount)
}
