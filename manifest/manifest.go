// Package manifest implements a Jubako Manifest pack: the catalogue that
// names every Directory and Content pack making up a container, plus an
// embedded copy of each one's CheckInfo so a reader can verify a
// subordinate pack without reopening it, grounded on
// original_source/src/reader/manifest_pack.rs and
// original_source/src/creator/manifest_pack.rs.
package manifest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

// packInfoSlotSize is the on-disk stride of one PackInfo record, fields
// plus its CRC-32C trailer.
const packInfoSlotSize = pack.PackInfoFieldsSize + 4

// ManifestPack is the read-side view of a Manifest pack: its one Directory
// pack entry, every Content pack entry, and an optional indexed value
// store holding each pack's free-data bytes.
type ManifestPack struct {
	header  pack.PackHeader
	mheader pack.ManifestPackHeader

	directoryPackInfo pack.PackInfo
	packInfos         []pack.PackInfo
	packsArrayBase    source.Offset
	maxID             uint16

	valueStore *valuestore.IndexedValueStore

	r *source.Reader

	checkOnce sync.Once
	checkInfo pack.CheckInfo
	checkErr  error
}

// Open parses a Manifest pack's PackHeader and ManifestPackHeader, then
// reads the array of PackInfo records immediately preceding the
// CheckInfo/footer, splitting the one Directory pack entry out from the
// Content pack entries.
func Open(r *source.Reader) (*ManifestPack, error) {
	ph, err := pack.ParsePackHeaderAt(r, 0)
	if err != nil {
		return nil, err
	}
	if ph.Magic != format.PackKindManifest {
		return nil, errs.NewFormat(0, "pack magic is %s, want Manifest", ph.Magic)
	}

	mh, err := pack.ParseManifestPackHeaderAt(r, source.Offset(pack.HeaderBlockSize))
	if err != nil {
		return nil, err
	}

	packCount := int(mh.PackCount)
	packsArrayBase := ph.CheckInfoPos - source.Offset(packCount*packInfoSlotSize)

	var directoryPackInfo pack.PackInfo
	haveDirectory := false
	packInfos := make([]pack.PackInfo, 0, packCount)
	var maxID uint16

	for i := 0; i < packCount; i++ {
		off := packsArrayBase + source.Offset(i*packInfoSlotSize)
		pi, err := pack.ParsePackInfoAt(r, off)
		if err != nil {
			return nil, err
		}
		if pi.PackKind == format.PackKindDirectory {
			directoryPackInfo = pi
			haveDirectory = true

			continue
		}
		if pi.PackId > maxID {
			maxID = pi.PackId
		}
		packInfos = append(packInfos, pi)
	}
	if !haveDirectory {
		return nil, errs.NewFormat(int64(packsArrayBase), "manifest pack has no directory pack entry")
	}

	var valueStore *valuestore.IndexedValueStore
	if !mh.ValueStorePosInfo.IsZero() {
		vs, err := valuestore.ParseAt(r, mh.ValueStorePosInfo)
		if err != nil {
			return nil, err
		}
		indexed, ok := vs.(*valuestore.IndexedValueStore)
		if !ok {
			return nil, errs.NewFormat(int64(mh.ValueStorePosInfo.Offset), "manifest pack value store is not Indexed")
		}
		valueStore = indexed
	}

	return &ManifestPack{
		header:            ph,
		mheader:           mh,
		directoryPackInfo: directoryPackInfo,
		packInfos:         packInfos,
		packsArrayBase:    packsArrayBase,
		maxID:             maxID,
		valueStore:        valueStore,
		r:                 r,
	}, nil
}

// PackCount reports the total number of packs catalogued, Directory pack
// included.
func (mp *ManifestPack) PackCount() int { return len(mp.packInfos) + 1 }

// MaxPackId reports the highest pack_id assigned to any Content pack entry.
func (mp *ManifestPack) MaxPackId() uint16 { return mp.maxID }

// DirectoryPackInfo returns the catalogue entry for the container's one
// Directory pack.
func (mp *ManifestPack) DirectoryPackInfo() pack.PackInfo { return mp.directoryPackInfo }

// ContentPackInfos returns every catalogued Content pack entry.
func (mp *ManifestPack) ContentPackInfos() []pack.PackInfo { return mp.packInfos }

// GetContentPackInfo returns the Content pack entry with the given pack_id.
func (mp *ManifestPack) GetContentPackInfo(packID uint16) (pack.PackInfo, error) {
	for _, pi := range mp.packInfos {
		if pi.PackId == packID {
			return pi, nil
		}
	}

	return pack.PackInfo{}, errs.ErrUnknownPack
}

// GetPackInfoByUUID returns the catalogue entry (Directory or Content pack)
// whose uuid matches id.
func (mp *ManifestPack) GetPackInfoByUUID(id uuid.UUID) (pack.PackInfo, error) {
	if mp.directoryPackInfo.UUID == id {
		return mp.directoryPackInfo, nil
	}
	for _, pi := range mp.packInfos {
		if pi.UUID == id {
			return pi, nil
		}
	}

	return pack.PackInfo{}, errs.ErrUnknownPack
}

// GetPackCheckInfo returns the embedded CheckInfo copy for the catalogued
// pack whose uuid matches id, read from within this Manifest pack rather
// than from the subordinate pack's own footer.
func (mp *ManifestPack) GetPackCheckInfo(id uuid.UUID) (pack.CheckInfo, error) {
	pi, err := mp.GetPackInfoByUUID(id)
	if err != nil {
		return pack.CheckInfo{}, err
	}
	ci, _, err := pack.ParseCheckInfoAt(mp.r, pi.CheckInfoPos.Offset)

	return ci, err
}

// FreeData returns the Manifest pack's caller-defined free-data area.
func (mp *ManifestPack) FreeData() [50]byte { return mp.mheader.FreeData }

// GetPackFreeData resolves packID's free_data_id through the Manifest's
// indexed value store. Pass packID 0 for the Directory pack. Returns nil,
// nil when the Manifest pack carries no value store at all.
func (mp *ManifestPack) GetPackFreeData(packID uint16) ([]byte, error) {
	pi := mp.directoryPackInfo
	if packID != 0 {
		var err error
		pi, err = mp.GetContentPackInfo(packID)
		if err != nil {
			return nil, err
		}
	}

	return mp.GetPackFreeDataRaw(pi.FreeDataId)
}

// GetPackFreeDataRaw resolves idx through the Manifest's indexed value
// store directly.
func (mp *ManifestPack) GetPackFreeDataRaw(idx format.ValueIdx) ([]byte, error) {
	if mp.valueStore == nil {
		return nil, nil
	}

	return mp.valueStore.GetData(uint64(idx), nil)
}

// Kind returns format.PackKindManifest.
func (mp *ManifestPack) Kind() format.PackKind { return format.PackKindManifest }

// UUID returns the pack's unique identifier.
func (mp *ManifestPack) UUID() uuid.UUID { return mp.header.UUID }

// Size returns the total on-disk size of the pack.
func (mp *ManifestPack) Size() source.Size { return mp.header.FileSize }

// Check verifies the pack's whole-body BLAKE3 digest, skipping every
// catalogued PackInfo's pack_location safe zone since a relocation tool may
// rewrite those bytes without invalidating the digest.
func (mp *ManifestPack) Check(src source.Source) (bool, error) {
	mp.checkOnce.Do(func() {
		mp.checkInfo, _, mp.checkErr = pack.ParseCheckInfoAt(mp.r, mp.header.CheckInfoPos)
	})
	if mp.checkErr != nil {
		return false, mp.checkErr
	}

	region := source.NewRegion(0, mp.header.CheckInfoPos)
	zones := pack.ManifestSafeZones(mp.packsArrayBase, int(mp.mheader.PackCount))

	return mp.checkInfo.Verify(src, region, zones)
}
