// Package containerpack implements the Jubako Container pack: an optional
// outer envelope that physically concatenates several finalized packs into
// one file and records a locator table over them, grounded on
// original_source/src/reader/container_pack.rs and
// original_source/src/creator/container_pack.rs.
package containerpack

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// ContainerPack is the read-side view of a Container pack: a locator table
// resolved up front into one sub-Reader per bundled pack.
type ContainerPack struct {
	header  pack.PackHeader
	cheader pack.ContainerPackHeader

	uuids   []uuid.UUID
	readers map[uuid.UUID]*source.Reader

	r *source.Reader

	checkOnce sync.Once
	checkInfo pack.CheckInfo
	checkErr  error
}

// Open parses a Container pack's PackHeader and ContainerPackHeader, reads
// its PackLocator table, and cuts one sub-Reader per locator entry out of r.
func Open(r *source.Reader) (*ContainerPack, error) {
	ph, err := pack.ParsePackHeaderAt(r, 0)
	if err != nil {
		return nil, err
	}
	if ph.Magic != format.PackKindContainer {
		return nil, errs.NewFormat(0, "pack magic is %s, want Container", ph.Magic)
	}

	ch, err := pack.ParseContainerPackHeaderAt(r, source.Offset(pack.HeaderBlockSize))
	if err != nil {
		return nil, err
	}

	locs, err := pack.ReadPackLocatorTable(r, ch.PackLocatorsPos, int(ch.PackCount))
	if err != nil {
		return nil, err
	}

	uuids := make([]uuid.UUID, len(locs))
	readers := make(map[uuid.UUID]*source.Reader, len(locs))
	for i, loc := range locs {
		end := loc.PackPos + source.Offset(loc.PackSize)
		sub := r.CreateSubReader(loc.PackPos, &end)
		uuids[i] = loc.UUID
		readers[loc.UUID] = sub
	}

	return &ContainerPack{
		header:  ph,
		cheader: ch,
		uuids:   uuids,
		readers: readers,
		r:       r,
	}, nil
}

// PackCount returns the number of packs bundled inside the container.
func (cp *ContainerPack) PackCount() int { return len(cp.uuids) }

// PackUUID returns the uuid of the idx-th bundled pack, in locator-table
// order.
func (cp *ContainerPack) PackUUID(idx int) (uuid.UUID, error) {
	if idx < 0 || idx >= len(cp.uuids) {
		return uuid.UUID{}, errs.ErrIndexIdxOutOfRange
	}

	return cp.uuids[idx], nil
}

// GetPackReader returns the sub-Reader bundled under id, or ok=false if no
// such pack is bundled.
func (cp *ContainerPack) GetPackReader(id uuid.UUID) (*source.Reader, bool) {
	r, ok := cp.readers[id]

	return r, ok
}

// GetPackReaderFromIdx returns the sub-Reader for the idx-th bundled pack.
func (cp *ContainerPack) GetPackReaderFromIdx(idx int) (*source.Reader, error) {
	id, err := cp.PackUUID(idx)
	if err != nil {
		return nil, err
	}
	r, _ := cp.GetPackReader(id)

	return r, nil
}

// GetManifestPackReader scans the bundled packs for the one Manifest pack
// and returns a Reader over it, or nil if none is bundled.
func (cp *ContainerPack) GetManifestPackReader() (*source.Reader, error) {
	for _, id := range cp.uuids {
		r := cp.readers[id]
		ph, err := pack.ParsePackHeaderAt(r, 0)
		if err != nil {
			return nil, err
		}
		if ph.Magic == format.PackKindManifest {
			return r, nil
		}
	}

	return nil, nil
}

// Locate implements locator.Locator: a Container pack doubles as an
// embedded locator resolving any uuid it bundles, ignoring the location
// hint entirely (it already has the pack's bytes in hand).
func (cp *ContainerPack) Locate(id uuid.UUID, _ []byte) (*source.Reader, error) {
	r, ok := cp.readers[id]
	if !ok {
		return nil, nil
	}

	return r, nil
}

// Kind returns format.PackKindContainer.
func (cp *ContainerPack) Kind() format.PackKind { return format.PackKindContainer }

// UUID returns the container's own unique identifier.
func (cp *ContainerPack) UUID() uuid.UUID { return cp.header.UUID }

// Size returns the total on-disk size of the container file.
func (cp *ContainerPack) Size() source.Size { return cp.header.FileSize }

// Check verifies the container's own whole-body BLAKE3 digest. It does not
// recurse into the packs it bundles; a caller wanting full-depth
// verification should additionally open and Check each bundled pack.
func (cp *ContainerPack) Check(src source.Source) (bool, error) {
	cp.checkOnce.Do(func() {
		cp.checkInfo, _, cp.checkErr = pack.ParseCheckInfoAt(cp.r, cp.header.CheckInfoPos)
	})
	if cp.checkErr != nil {
		return false, cp.checkErr
	}

	region := source.NewRegion(0, cp.header.CheckInfoPos)

	return cp.checkInfo.Verify(src, region, nil)
}
