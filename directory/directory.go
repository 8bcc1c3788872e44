// Package directory implements a Jubako Directory pack: the value stores,
// entry stores, and named indexes it catalogues, and the ptr-tables that
// locate each. It ties [[entry]], [[valuestore]], and [[rangesearch]]
// together into the structure a Directory pack actually persists,
// grounded on original_source/src/reader/directory_pack/mod.rs and
// original_source/src/creator/directory_pack/directory_pack.rs.
package directory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/entry"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/rangesearch"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

// DirectoryPack is the read-side view of a Directory pack: a header plus
// its three ptr-tables (value_store, entry_store, index), backed by a
// shared Reader over the whole pack and per-kind decode caches.
type DirectoryPack struct {
	header       pack.DirectoryPackHeader
	uuidV        uuid.UUID
	fileSz       source.Size
	checkInfoPos source.Offset

	r *source.Reader

	valueStorePtrs []pack.SizedOffset
	entryStorePtrs []pack.SizedOffset
	indexPtrs      []pack.SizedOffset
	indexHeaders   []rangesearch.IndexHeader

	valueStores *cache[format.ValueStoreIdx, valuestore.ValueStore]
	entryStores *cache[format.EntryStoreIdx, *entry.EntryStore]

	checkOnce sync.Once
	checkInfo pack.CheckInfo
	checkErr  error
}

// Open parses a Directory pack's PackHeader and DirectoryPackHeader at the
// start of r, loads its three ptr-tables, and eagerly decodes every index
// header (small, fixed-format records every lookup needs by name or id).
// Value stores and entry stores are only decoded on first use.
func Open(r *source.Reader) (*DirectoryPack, error) {
	ph, err := pack.ParsePackHeaderAt(r, 0)
	if err != nil {
		return nil, err
	}
	if ph.Magic != format.PackKindDirectory {
		return nil, errs.NewFormat(0, "pack magic is %s, want Directory", ph.Magic)
	}

	dh, err := pack.ParseDirectoryPackHeaderAt(r, source.Offset(pack.HeaderBlockSize))
	if err != nil {
		return nil, err
	}

	valueStorePtrs, err := pack.ReadSizedOffsetTable(r, dh.ValueStorePtrPos, int(dh.ValueStoreCount))
	if err != nil {
		return nil, err
	}
	entryStorePtrs, err := pack.ReadSizedOffsetTable(r, dh.EntryStorePtrPos, int(dh.EntryStoreCount))
	if err != nil {
		return nil, err
	}
	indexPtrs, err := pack.ReadSizedOffsetTable(r, dh.IndexPtrPos, int(dh.IndexCount))
	if err != nil {
		return nil, err
	}

	indexHeaders := make([]rangesearch.IndexHeader, len(indexPtrs))
	for i, ptr := range indexPtrs {
		h, err := parseIndexHeaderBlock(r, ptr)
		if err != nil {
			return nil, err
		}
		indexHeaders[i] = h
	}

	dp := &DirectoryPack{
		header:         dh,
		uuidV:          ph.UUID,
		fileSz:         ph.FileSize,
		checkInfoPos:   ph.CheckInfoPos,
		r:              r,
		valueStorePtrs: valueStorePtrs,
		entryStorePtrs: entryStorePtrs,
		indexPtrs:      indexPtrs,
		indexHeaders:   indexHeaders,
	}
	dp.valueStores = newCache[format.ValueStoreIdx, valuestore.ValueStore](defaultCacheCapacity, dp.loadValueStore)
	dp.entryStores = newCache[format.EntryStoreIdx, *entry.EntryStore](defaultCacheCapacity, dp.loadEntryStore)

	return dp, nil
}

func parseIndexHeaderBlock(r *source.Reader, ptr pack.SizedOffset) (rangesearch.IndexHeader, error) {
	return blockparser.ParseSizedBlock(r, ptr.Offset, int(ptr.Size), blockparser.CheckCrc32,
		func(buf []byte) (rangesearch.IndexHeader, error) {
			h, n, err := rangesearch.ParseIndexHeader(buf)
			if err != nil {
				return rangesearch.IndexHeader{}, err
			}
			if n != len(buf) {
				return rangesearch.IndexHeader{}, errs.NewFormat(int64(ptr.Offset), "index header has %d trailing bytes", len(buf)-n)
			}

			return h, nil
		})
}

func (dp *DirectoryPack) loadValueStore(idx format.ValueStoreIdx) (valuestore.ValueStore, error) {
	if int(idx) >= len(dp.valueStorePtrs) {
		return nil, errs.ErrValueStoreIdxOutOfRange
	}

	return valuestore.ParseAt(dp.r, dp.valueStorePtrs[idx])
}

func (dp *DirectoryPack) loadEntryStore(idx format.EntryStoreIdx) (*entry.EntryStore, error) {
	if int(idx) >= len(dp.entryStorePtrs) {
		return nil, errs.ErrEntryStoreIdxOutOfRange
	}

	return entry.ParseEntryStore(dp.r, dp.entryStorePtrs[idx])
}

// ValueStoreCount reports the number of value stores this pack catalogues.
func (dp *DirectoryPack) ValueStoreCount() int { return len(dp.valueStorePtrs) }

// EntryStoreCount reports the number of entry stores this pack catalogues.
func (dp *DirectoryPack) EntryStoreCount() int { return len(dp.entryStorePtrs) }

// IndexCount reports the number of named indexes this pack catalogues.
func (dp *DirectoryPack) IndexCount() int { return len(dp.indexPtrs) }

// FreeData returns the pack's 24-byte caller-defined free-data area.
func (dp *DirectoryPack) FreeData() [24]byte { return dp.header.FreeData }

// GetValueStore resolves idx through the value_store_ptr table, decoding
// and caching it on first use. Its method value satisfies the resolver
// signature entry.ArrayValue.Bytes expects.
func (dp *DirectoryPack) GetValueStore(idx format.ValueStoreIdx) (valuestore.ValueStore, error) {
	return dp.valueStores.Get(idx)
}

// GetEntryStore resolves idx through the entry_store_ptr table, decoding
// and caching it on first use.
func (dp *DirectoryPack) GetEntryStore(idx format.EntryStoreIdx) (*entry.EntryStore, error) {
	return dp.entryStores.Get(idx)
}

// GetIndex returns the Index at idx, bound to the EntryStore it names a
// sub-range of.
func (dp *DirectoryPack) GetIndex(idx format.IndexIdx) (*rangesearch.Index, error) {
	if int(idx) >= len(dp.indexHeaders) {
		return nil, errs.ErrIndexIdxOutOfRange
	}
	header := dp.indexHeaders[idx]

	store, err := dp.GetEntryStore(header.StoreId)
	if err != nil {
		return nil, err
	}
	if int(header.EntryOffset)+int(header.EntryCount) > store.EntryCount() {
		return nil, errs.ErrIndexRangeOutOfBounds
	}

	return rangesearch.NewIndex(header, store), nil
}

// GetIndexByName returns the first Index whose declared name matches name.
func (dp *DirectoryPack) GetIndexByName(name string) (*rangesearch.Index, error) {
	for i, h := range dp.indexHeaders {
		if h.Name == name {
			return dp.GetIndex(format.IndexIdx(i))
		}
	}

	return nil, errs.ErrUnknownIndex
}

// Kind returns format.PackKindDirectory.
func (dp *DirectoryPack) Kind() format.PackKind { return format.PackKindDirectory }

// UUID returns the pack's unique identifier.
func (dp *DirectoryPack) UUID() uuid.UUID { return dp.uuidV }

// Size returns the total on-disk size of the pack.
func (dp *DirectoryPack) Size() source.Size { return dp.fileSz }

// Check verifies the pack's whole-body BLAKE3 digest.
func (dp *DirectoryPack) Check(src source.Source) (bool, error) {
	dp.checkOnce.Do(func() {
		dp.checkInfo, _, dp.checkErr = pack.ParseCheckInfoAt(dp.r, dp.checkInfoPos)
	})
	if dp.checkErr != nil {
		return false, dp.checkErr
	}

	region := source.NewRegion(0, dp.checkInfoPos)

	return dp.checkInfo.Verify(src, region, nil)
}
