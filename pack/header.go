// Package pack implements the structures shared by every pack kind: the
// 64-byte leading PackHeader block, the trailing CheckInfo + reversed-header
// footer every pack ends with, and the SizedOffset locator used throughout
// every ptr-table in the engine.
package pack

import (
	"github.com/google/uuid"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

// headerFieldsSize is the width of PackHeader's fixed fields, not counting
// its trailing CRC-32C.
const headerFieldsSize = 60

// HeaderBlockSize is the total width of a PackHeader block on disk,
// including its CRC-32C trailer.
const HeaderBlockSize = headerFieldsSize + 4

// VendorId is a caller-defined 4-byte tag carried in every pack header,
// opaque to the engine itself.
type VendorId [4]byte

// PackHeader is the 60-byte fixed header (plus a 4-byte CRC-32C trailer)
// every pack begins with.
type PackHeader struct {
	Magic         format.PackKind
	AppVendorId   VendorId
	MajorVersion  uint8
	MinorVersion  uint8
	UUID          uuid.UUID
	Flags         uint8
	FileSize      source.Size
	CheckInfoPos  source.Offset
}

// SupportedMajor and SupportedMinor are the only (major, minor) pair this
// engine understands.
const (
	SupportedMajor = 0
	SupportedMinor = 2
)

// NewPackHeader builds a fresh header for a pack being created.
func NewPackHeader(magic format.PackKind, vendorID VendorId, id uuid.UUID, fileSize source.Size, checkInfoPos source.Offset) PackHeader {
	return PackHeader{
		Magic:        magic,
		AppVendorId:  vendorID,
		MajorVersion: SupportedMajor,
		MinorVersion: SupportedMinor,
		UUID:         id,
		FileSize:     fileSize,
		CheckInfoPos: checkInfoPos,
	}
}

// parsePackHeader decodes the headerFieldsSize-byte field block (CRC already
// verified by the caller).
func parsePackHeader(data []byte) (PackHeader, error) {
	if len(data) != headerFieldsSize {
		return PackHeader{}, errs.ErrInvalidHeaderSize
	}

	if data[0] != 'j' || data[1] != 'b' || data[2] != 'k' {
		return PackHeader{}, errs.ErrInvalidMagic
	}
	kind := format.PackKind(data[3])
	if !kind.Valid() {
		return PackHeader{}, errs.ErrInvalidMagic
	}

	var vendorID VendorId
	copy(vendorID[:], data[4:8])

	major, minor := data[8], data[9]
	if major != SupportedMajor || minor != SupportedMinor {
		return PackHeader{}, errs.NewVersion(major, minor)
	}

	id, err := uuid.FromBytes(data[10:26])
	if err != nil {
		return PackHeader{}, errs.NewFormat(-1, "invalid pack uuid: %v", err)
	}

	flags := data[26]
	// data[27:32] is 5 bytes of padding.
	fileSize := source.Size(bytesize.ReadUint(data[32:40], bytesize.U8))
	checkInfoPos := source.Offset(bytesize.ReadUint(data[40:48], bytesize.U8))
	// data[48:60] is 12 bytes of padding.

	return PackHeader{
		Magic:        kind,
		AppVendorId:  vendorID,
		MajorVersion: major,
		MinorVersion: minor,
		UUID:         id,
		Flags:        flags,
		FileSize:     fileSize,
		CheckInfoPos: checkInfoPos,
	}, nil
}

// ParsePackHeaderAt reads and CRC-verifies a PackHeader block at offset
// (relative to r).
func ParsePackHeaderAt(r *source.Reader, offset source.Offset) (PackHeader, error) {
	return blockparser.ParseSizedBlock(r, offset, headerFieldsSize, blockparser.CheckCrc32, parsePackHeader)
}

// Bytes serialises h's field block (without its CRC trailer).
func (h PackHeader) Bytes() []byte {
	buf := make([]byte, headerFieldsSize)
	buf[0], buf[1], buf[2], buf[3] = 'j', 'b', 'k', byte(h.Magic)
	copy(buf[4:8], h.AppVendorId[:])
	buf[8] = h.MajorVersion
	buf[9] = h.MinorVersion
	copy(buf[10:26], h.UUID[:])
	buf[26] = h.Flags
	bytesize.WriteUint(buf[32:40], uint64(h.FileSize), bytesize.U8)
	bytesize.WriteUint(buf[40:48], uint64(h.CheckInfoPos), bytesize.U8)

	return buf
}

// AppendBlock appends h's field block and its CRC-32C trailer to dst.
func (h PackHeader) AppendBlock(dst []byte) []byte {
	return blockparser.AppendSizedBlock(dst, h.Bytes(), blockparser.CheckCrc32)
}

// CheckInfoSize returns the number of field bytes (CRC excluded, as
// CheckInfo.Size reports them) occupied by the pack's CheckInfo record,
// derived from file_size and check_info_pos per the internal consistency
// invariant file_size == check_info_pos + checkinfo_size + 4 + footer.
func (h PackHeader) CheckInfoSize() source.Size {
	return source.Size(uint64(h.FileSize) - uint64(h.CheckInfoPos) - 4 - FooterSize)
}
