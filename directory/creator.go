package directory

import (
	"io"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/entry"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/blake3sum"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/rangesearch"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

// ptrTableEntrySize is the on-disk width of one pack.SizedOffset entry.
const ptrTableEntrySize = 8

// ptrTableReserveOffset is where Finalize writes the three ptr-tables,
// immediately after the PackHeader and DirectoryPackHeader blocks.
const ptrTableReserveOffset = pack.HeaderBlockSize + pack.DirectoryHeaderFieldsSize + blockCrcSize

// blockCrcSize is the width of one block's trailing CRC-32C.
const blockCrcSize = 4

// Creator builds a new Directory pack: a caller declares value stores,
// entry stores, and indexes over them, then Finalize lays out the pack,
// writes every ptr-table, and appends the whole-pack CheckInfo and
// reversed-header footer, grounded on
// original_source/src/creator/directory_pack/directory_pack.rs.
type Creator struct {
	appVendorID pack.VendorId
	packID      format.PackId
	freeData    [24]byte

	w io.WriteSeeker

	valueStores []valuestore.Creator
	entryStores []*entry.EntryStoreCreator
	indexes     []rangesearch.IndexHeader
}

// NewCreator starts a new Directory pack creator. w must be empty and
// positioned at its start.
func NewCreator(w io.WriteSeeker, packID format.PackId, appVendorID pack.VendorId, freeData [24]byte) *Creator {
	return &Creator{
		appVendorID: appVendorID,
		packID:      packID,
		freeData:    freeData,
		w:           w,
	}
}

// AddValueStore registers vc, bound to a value store slot whose index this
// method returns. vc must already carry that same index (see
// valuestore.NewPlainValueStoreCreator / NewIndexedValueStoreCreator),
// matching AddEntryStore's idx-returning shape for API symmetry even though
// the original add_value_store returns nothing.
func (c *Creator) AddValueStore(vc valuestore.Creator) (format.ValueStoreIdx, error) {
	idx := format.ValueStoreIdx(len(c.valueStores))
	if vc.Idx() != idx {
		return 0, errs.NewArg("value store creator bound to idx %d, want %d", vc.Idx(), idx)
	}
	c.valueStores = append(c.valueStores, vc)

	return idx, nil
}

// AddEntryStore registers ec, bound to an entry store slot whose index this
// method returns.
func (c *Creator) AddEntryStore(ec *entry.EntryStoreCreator) (format.EntryStoreIdx, error) {
	idx := format.EntryStoreIdx(len(c.entryStores))
	if ec.Idx() != idx {
		return 0, errs.NewArg("entry store creator bound to idx %d, want %d", ec.Idx(), idx)
	}
	c.entryStores = append(c.entryStores, ec)

	return idx, nil
}

// AddIndex declares a named sub-range of entry store storeID, ordered by
// indexProperty when the caller later searches it.
func (c *Creator) AddIndex(name string, storeID format.EntryStoreIdx, indexProperty uint8, count uint32, offset format.EntryIdx, extraData format.ContentAddress) (format.IndexIdx, error) {
	if int(storeID) >= len(c.entryStores) {
		return 0, errs.ErrEntryStoreIdxOutOfRange
	}

	idx := format.IndexIdx(len(c.indexes))
	c.indexes = append(c.indexes, rangesearch.IndexHeader{
		StoreId:       storeID,
		EntryCount:    count,
		EntryOffset:   offset,
		ExtraData:     extraData,
		IndexProperty: indexProperty,
		Name:          name,
	})

	return idx, nil
}

// reserveSize is the region Finalize reserves at the start of w for the
// PackHeader, DirectoryPackHeader, and the three ptr-tables, before
// writing any body.
func (c *Creator) reserveSize() int64 {
	n := len(c.indexes) + len(c.entryStores) + len(c.valueStores)

	return ptrTableReserveOffset + ptrTableEntrySize*int64(n)
}

// Finalize writes every index, entry store, and value store body (in that
// order, mirroring the original), then backfills the three ptr-tables and
// both header blocks, and appends the whole-pack CheckInfo and
// reversed-header footer. src must expose random-access reads over
// everything written to w so far, for the whole-pack BLAKE3 digest.
func (c *Creator) Finalize(src source.Source) (pack.PackHeader, error) {
	reserveSize := c.reserveSize()
	if _, err := c.w.Seek(reserveSize, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}

	indexPtrs := make([]pack.SizedOffset, len(c.indexes))
	for i, h := range c.indexes {
		ptr, err := c.appendIndex(h)
		if err != nil {
			return pack.PackHeader{}, err
		}
		indexPtrs[i] = ptr
	}

	entryStorePtrs := make([]pack.SizedOffset, len(c.entryStores))
	for i, ec := range c.entryStores {
		pos, err := c.w.Seek(0, io.SeekCurrent)
		if err != nil {
			return pack.PackHeader{}, err
		}
		ptr, err := ec.AppendBlock(c.w, pos)
		if err != nil {
			return pack.PackHeader{}, err
		}
		entryStorePtrs[i] = ptr
	}

	valueStorePtrs := make([]pack.SizedOffset, len(c.valueStores))
	for i, vc := range c.valueStores {
		pos, err := c.w.Seek(0, io.SeekCurrent)
		if err != nil {
			return pack.PackHeader{}, err
		}
		ptr, err := valuestore.AppendBlock(c.w, pos, vc)
		if err != nil {
			return pack.PackHeader{}, err
		}
		valueStorePtrs[i] = ptr
	}

	checkInfoPos, err := c.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}

	if _, err := c.w.Seek(ptrTableReserveOffset, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}

	indexPtrPos := ptrTableReserveOffset
	if err := writeSizedOffsetTable(c.w, indexPtrs); err != nil {
		return pack.PackHeader{}, err
	}
	valueStorePtrPos := indexPtrPos + ptrTableEntrySize*int64(len(indexPtrs))
	if err := writeSizedOffsetTable(c.w, valueStorePtrs); err != nil {
		return pack.PackHeader{}, err
	}
	entryStorePtrPos := valueStorePtrPos + ptrTableEntrySize*int64(len(valueStorePtrs))
	if err := writeSizedOffsetTable(c.w, entryStorePtrs); err != nil {
		return pack.PackHeader{}, err
	}

	id := uuid.New()
	fileSize := source.Size(checkInfoPos) + 1 + blake3sum.Size + blockCrcSize + source.Size(pack.FooterSize)
	header := pack.NewPackHeader(format.PackKindDirectory, c.appVendorID, id, fileSize, source.Offset(checkInfoPos))

	dirHeader := pack.DirectoryPackHeader{
		IndexPtrPos:      source.Offset(indexPtrPos),
		EntryStorePtrPos: source.Offset(entryStorePtrPos),
		ValueStorePtrPos: source.Offset(valueStorePtrPos),
		IndexCount:       uint32(len(indexPtrs)),
		EntryStoreCount:  uint32(len(entryStorePtrs)),
		ValueStoreCount:  uint8(len(valueStorePtrs)),
		FreeData:         c.freeData,
	}

	if _, err := c.w.Seek(0, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := c.w.Write(header.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := c.w.Write(dirHeader.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	if _, err := c.w.Seek(0, io.SeekEnd); err != nil {
		return pack.PackHeader{}, err
	}

	checkedRegion := source.NewRegion(0, header.CheckInfoPos)
	buf := make([]byte, checkedRegion.Size())
	if err := src.ReadExact(buf, 0); err != nil {
		return pack.PackHeader{}, err
	}
	digest := blake3sum.Sum(buf)
	checkInfo := pack.CheckInfo{Kind: format.CheckKindBlake3, Hash: digest}
	if _, err := c.w.Write(checkInfo.AppendTo(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	footer := pack.ReverseHeaderFooter(header.AppendBlock(nil))
	if _, err := c.w.Write(footer); err != nil {
		return pack.PackHeader{}, err
	}

	return header, nil
}

func (c *Creator) appendIndex(h rangesearch.IndexHeader) (pack.SizedOffset, error) {
	pos, err := c.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.SizedOffset{}, err
	}

	fields := h.AppendTo(nil)
	block := blockparser.AppendSizedBlock(nil, fields, blockparser.CheckCrc32)
	if _, err := c.w.Write(block); err != nil {
		return pack.SizedOffset{}, err
	}

	return pack.NewSizedOffset(source.Offset(pos), source.Size(len(fields))), nil
}

func writeSizedOffsetTable(w io.Writer, ptrs []pack.SizedOffset) error {
	var buf []byte
	for _, p := range ptrs {
		buf = p.AppendTo(buf)
	}
	_, err := w.Write(buf)

	return err
}
