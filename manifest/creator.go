package manifest

import (
	"io"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/blake3sum"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

// manifestReserveSize is how much space Finalize reserves at the start of
// the output for the PackHeader and ManifestPackHeader blocks.
const manifestReserveSize = pack.HeaderBlockSize + pack.ManifestHeaderFieldsSize + 4

// PackEntry describes one pack a Manifest pack catalogues: its identity,
// its on-disk size, a copy of its own CheckInfo (embedded verbatim so a
// reader can verify it without reopening the pack), its free-data bytes,
// and a location hint a locator.Chain resolves.
type PackEntry struct {
	UUID      uuid.UUID
	PackId    uint16
	PackKind  format.PackKind
	PackGroup uint8
	PackSize  source.Size
	CheckInfo pack.CheckInfo
	FreeData  []byte
	Locator   []byte
}

// Creator builds a new Manifest pack: a caller adds one entry per
// catalogued pack (the container's Directory pack included), then
// Finalize lays out the embedded CheckInfo copies, the free-data value
// store, and the PackInfo array, grounded on
// original_source/src/creator/manifest_pack.rs.
type Creator struct {
	appVendorID pack.VendorId
	freeData    [50]byte

	packs             []PackEntry
	valueStoreCreator *valuestore.IndexedValueStoreCreator
}

// NewCreator starts a new Manifest pack creator.
func NewCreator(appVendorID pack.VendorId, freeData [50]byte) *Creator {
	return &Creator{
		appVendorID:       appVendorID,
		freeData:          freeData,
		valueStoreCreator: valuestore.NewIndexedValueStoreCreator(0),
	}
}

// AddPack registers entry as one of the packs this Manifest pack
// catalogues. Exactly one entry should carry format.PackKindDirectory.
func (c *Creator) AddPack(entry PackEntry) {
	c.packs = append(c.packs, entry)
}

// Finalize writes w's reserved header region, an embedded CheckInfo copy
// per registered pack, the free-data value store, and the PackInfo array,
// then backfills the header blocks and appends the whole-pack CheckInfo
// (its digest skipping every pack_location safe zone) and reversed-header
// footer. src must expose random-access reads over everything written to
// w so far.
func (c *Creator) Finalize(w io.WriteSeeker, src source.Source) (pack.PackHeader, error) {
	if _, err := w.Seek(manifestReserveSize, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}

	refs := make([]valuestore.ValueRef, len(c.packs))
	for i, p := range c.packs {
		refs[i] = c.valueStoreCreator.AddValue(p.FreeData)
	}

	packInfos := make([]pack.PackInfo, len(c.packs))
	for i, p := range c.packs {
		pos, err := w.Seek(0, io.SeekCurrent)
		if err != nil {
			return pack.PackHeader{}, err
		}

		block := p.CheckInfo.AppendTo(nil)
		if _, err := w.Write(block); err != nil {
			return pack.PackHeader{}, err
		}

		packInfos[i] = pack.PackInfo{
			UUID:         p.UUID,
			PackSize:     p.PackSize,
			CheckInfoPos: pack.NewSizedOffset(source.Offset(pos), p.CheckInfo.Size()),
			PackId:       p.PackId,
			PackKind:     p.PackKind,
			PackGroup:    p.PackGroup,
			FreeDataId:   format.ValueIdx(refs[i].Resolve()),
			PackLocation: p.Locator,
		}
	}

	valueStorePos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}
	vsPtr, err := valuestore.AppendBlock(w, valueStorePos, c.valueStoreCreator)
	if err != nil {
		return pack.PackHeader{}, err
	}

	packsOffset, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}
	for _, pi := range packInfos {
		if _, err := w.Write(pi.AppendBlock(nil)); err != nil {
			return pack.PackHeader{}, err
		}
	}

	checkInfoPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}

	id := uuid.New()
	fileSize := source.Size(checkInfoPos) + 1 + blake3sum.Size + 4 + source.Size(pack.FooterSize)
	header := pack.NewPackHeader(format.PackKindManifest, c.appVendorID, id, fileSize, source.Offset(checkInfoPos))

	mheader := pack.ManifestPackHeader{
		PackCount:         uint16(len(c.packs)),
		ValueStorePosInfo: vsPtr,
		FreeData:          c.freeData,
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := w.Write(header.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := w.Write(mheader.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return pack.PackHeader{}, err
	}

	checkedRegion := source.NewRegion(0, header.CheckInfoPos)
	buf := make([]byte, checkedRegion.Size())
	if err := src.ReadExact(buf, 0); err != nil {
		return pack.PackHeader{}, err
	}
	zones := pack.ManifestSafeZones(source.Offset(packsOffset), len(c.packs))
	digest := blake3sum.SumExcluding(buf, zones)
	checkInfo := pack.CheckInfo{Kind: format.CheckKindBlake3, Hash: digest}
	if _, err := w.Write(checkInfo.AppendTo(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	footer := pack.ReverseHeaderFooter(header.AppendBlock(nil))
	if _, err := w.Write(footer); err != nil {
		return pack.PackHeader{}, err
	}

	return header, nil
}
