package containerpack

import (
	"io"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/blake3sum"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// headerReserveSize is how much space Creator reserves at the start of the
// output for the PackHeader block and the ContainerPackHeader block.
const headerReserveSize = pack.HeaderBlockSize + pack.ContainerHeaderFieldsSize + 4

// Creator builds a new Container pack by streaming already-finalized packs
// into its body one at a time, recording a PackLocator entry for each,
// grounded on original_source/src/creator/container_pack.rs's
// ContainerPackCreator.
type Creator struct {
	appVendorID pack.VendorId
	freeData    [24]byte

	w        io.WriteSeeker
	locators []pack.PackLocator
}

// NewCreator starts a new Container pack creator, reserving its leading
// header region in w.
func NewCreator(w io.WriteSeeker, appVendorID pack.VendorId, freeData [24]byte) (*Creator, error) {
	if _, err := w.Write(make([]byte, headerReserveSize)); err != nil {
		return nil, err
	}

	return &Creator{appVendorID: appVendorID, freeData: freeData, w: w}, nil
}

// AddPack copies r's entire contents into the container body and records a
// PackLocator entry for it under id. r should yield exactly one already
// finalized pack's bytes (PackHeader through its reversed-header footer).
func (c *Creator) AddPack(id uuid.UUID, r io.Reader) error {
	pos, err := c.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	n, err := io.Copy(c.w, r)
	if err != nil {
		return err
	}

	c.locators = append(c.locators, pack.PackLocator{
		UUID:     id,
		PackSize: source.Size(n),
		PackPos:  source.Offset(pos),
	})

	return nil
}

// Finalize writes the PackLocator table, backfills the PackHeader and
// ContainerPackHeader blocks, and appends a whole-pack BLAKE3 CheckInfo plus
// the reversed-header footer. src must expose random-access reads over
// everything written to w so far.
func (c *Creator) Finalize(src source.Source) (pack.PackHeader, error) {
	locatorsPos, err := c.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}

	var buf []byte
	for _, loc := range c.locators {
		buf = append(buf, loc.Bytes()...)
	}
	if _, err := c.w.Write(buf); err != nil {
		return pack.PackHeader{}, err
	}

	checkInfoPos, err := c.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}

	id := uuid.New()
	fileSize := source.Size(checkInfoPos) + 1 + blake3sum.Size + 4 + source.Size(pack.FooterSize)
	header := pack.NewPackHeader(format.PackKindContainer, c.appVendorID, id, fileSize, source.Offset(checkInfoPos))

	cheader := pack.ContainerPackHeader{
		PackLocatorsPos: source.Offset(locatorsPos),
		PackCount:       uint16(len(c.locators)),
		FreeData:        c.freeData,
	}

	if _, err := c.w.Seek(0, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := c.w.Write(header.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := c.w.Write(cheader.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	if _, err := c.w.Seek(0, io.SeekEnd); err != nil {
		return pack.PackHeader{}, err
	}

	checkedBuf := make([]byte, checkInfoPos)
	if err := src.ReadExact(checkedBuf, 0); err != nil {
		return pack.PackHeader{}, err
	}
	digest := blake3sum.Sum(checkedBuf)
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
