package pack

import (
	"github.com/google/uuid"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/blake3sum"
	"github.com/arloliu/jubako/source"
)

// PackInfoFieldsSize is the width of a PackInfo record's fixed fields, not
// counting its CRC-32C trailer.
const PackInfoFieldsSize = 252

// packLocationMaxLen is the maximum byte length a PackInfo's length-prefixed
// pack_location field can carry.
const packLocationMaxLen = PackInfoFieldsSize - packInfoSafeZoneStart - 1

// packInfoSafeZoneStart is the byte offset, within a PackInfo record, where
// the pack_location "safe zone" begins. The fields preceding it (uuid,
// pack_size, check_info_pos, pack_id, pack_kind, pack_group, free_data_id)
// sum to exactly this many bytes.
const packInfoSafeZoneStart = 38

// PackInfo describes one pack catalogued by a Manifest pack: its identity,
// its on-disk size and integrity check position, and a location hint a
// locator.Chain can resolve to an actual reader.
type PackInfo struct {
	UUID         uuid.UUID
	PackSize     source.Size
	CheckInfoPos SizedOffset
	PackId       uint16
	PackKind     format.PackKind
	PackGroup    uint8
	FreeDataId   format.ValueIdx
	PackLocation []byte // length-prefixed hint, e.g. a relative path; may be empty
}

// packInfoSlotOffset returns the byte offset of record index i's 256-byte
// slot relative to the start of the PackInfo array.
func packInfoSlotOffset(i int) source.Offset {
	return source.Offset(i * (PackInfoFieldsSize + 4))
}

// ManifestSafeZones returns the pack_location "safe zone" for each of count
// PackInfo records in an array starting at arrayBase (absolute offset within
// the pack), for use with CheckInfo.Verify/blake3sum.SumExcluding.
func ManifestSafeZones(arrayBase source.Offset, count int) []blake3sum.Zone {
	zones := make([]blake3sum.Zone, count)
	for i := 0; i < count; i++ {
		start := arrayBase + packInfoSlotOffset(i) + packInfoSafeZoneStart
		zones[i] = blake3sum.Zone{
			Start: int64(start),
			End:   int64(start) + int64(PackInfoFieldsSize-packInfoSafeZoneStart),
		}
	}

	return zones
}

func parsePackInfo(data []byte) (PackInfo, error) {
	if len(data) != PackInfoFieldsSize {
		return PackInfo{}, errs.ErrInvalidHeaderSize
	}

	info := PackInfo{
		PackSize:     source.Size(bytesize.ReadUint(data[16:24], bytesize.U8)),
		CheckInfoPos: ParseSizedOffset(data[24:32]),
		PackId:       uint16(bytesize.ReadUint(data[32:34], bytesize.U2)),
		PackKind:     format.PackKind(data[34]),
		PackGroup:    data[35],
		FreeDataId:   format.ValueIdx(bytesize.ReadUint(data[36:38], bytesize.U2)),
	}
	id, err := uuid.FromBytes(data[0:16])
	if err != nil {
		return PackInfo{}, errs.NewFormat(-1, "invalid pack_info uuid: %v", err)
	}
	info.UUID = id

	locLen := int(data[packInfoSafeZoneStart])
	if locLen > packLocationMaxLen {
		return PackInfo{}, errs.NewFormat(-1, "pack_location length %d exceeds maximum %d", locLen, packLocationMaxLen)
	}
	info.PackLocation = append([]byte(nil), data[packInfoSafeZoneStart+1:packInfoSafeZoneStart+1+locLen]...)

	return info, nil
}

// ParsePackInfoAt reads and CRC-verifies a PackInfo record at offset
// (relative to r).
func ParsePackInfoAt(r *source.Reader, offset source.Offset) (PackInfo, error) {
	return blockparser.ParseSizedBlock(r, offset, PackInfoFieldsSize, blockparser.CheckCrc32, parsePackInfo)
}

// Bytes serialises info's field block (without its CRC trailer).
func (info PackInfo) Bytes() []byte {
	if len(info.PackLocation) > packLocationMaxLen {
		panic("pack: PackInfo.PackLocation exceeds maximum length")
	}

	buf := make([]byte, PackInfoFieldsSize)
	copy(buf[0:16], info.UUID[:])
	bytesize.WriteUint(buf[16:24], uint64(info.PackSize), bytesize.U8)
	copy(buf[24:32], info.CheckInfoPos.AppendTo(nil))
	bytesize.WriteUint(buf[32:34], uint64(info.PackId), bytesize.U2)
	buf[34] = byte(info.PackKind)
	buf[35] = info.PackGroup
	bytesize.WriteUint(buf[36:38], uint64(info.FreeDataId), bytesize.U2)
	buf[packInfoSafeZoneStart] = byte(len(info.PackLocation))
	copy(buf[packInfoSafeZoneStart+1:], info.PackLocation)

	return buf
}

// AppendBlock appends info's field block and its CRC-32C trailer to dst.
func (info PackInfo) AppendBlock(dst []byte) []byte {
	return blockparser.AppendSizedBlock(dst, info.Bytes(), blockparser.CheckCrc32)
}
