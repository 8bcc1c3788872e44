// Package blockparser implements the two CRC-checked read protocols most
// on-disk structures in the engine are built from:
//
//   - a "sized block": a fixed-size header immediately followed by its own
//     4-byte CRC-32C, the unit pack headers, kind-specific headers and
//     PackInfo records are all built from.
//   - a "data block": a variable-size payload whose own length is only
//     known after parsing a short fixed-size tail that follows it — the
//     shape value stores and entry stores take.
//
// Cluster tails and PackLocator records carry no CRC-32C and are parsed
// by their own packages without this one.
package blockparser

import (
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/internal/crc32c"
	"github.com/arloliu/jubako/source"
)

// BlockCheck selects whether a sized block carries a trailing CRC-32C.
type BlockCheck uint8

const (
	CheckNone  BlockCheck = 0
	CheckCrc32 BlockCheck = 1
)

// Size returns the number of trailer bytes the check adds.
func (c BlockCheck) Size() source.Size {
	if c == CheckCrc32 {
		return 4
	}

	return 0
}

// ParseSizedBlock reads a headerSize-byte block (plus its CRC trailer, when
// check is CheckCrc32) at offset within r, verifies the CRC, and hands the
// headerSize header bytes to decode.
func ParseSizedBlock[T any](r *source.Reader, offset source.Offset, headerSize int, check BlockCheck, decode func([]byte) (T, error)) (T, error) {
	var zero T

	total := headerSize + int(check.Size())
	buf := make([]byte, total)
	st := r.NewStreamAt(offset)
	if err := st.ReadExact(buf); err != nil {
		return zero, err
	}

	if check == CheckCrc32 {
		if !crc32c.Verify(buf) {
			return zero, errs.ErrInvalidBlockCRC
		}
	}

	return decode(buf[:headerSize])
}

// AppendSizedBlock appends header to dst, followed by a CRC-32C trailer
// when check is CheckCrc32.
func AppendSizedBlock(dst []byte, header []byte, check BlockCheck) []byte {
	dst = append(dst, header...)
	if check == CheckCrc32 {
		dst = crc32c.AppendChecksum(dst, header)
	}

	return dst
}

// ParseDataBlock implements the tail-first read: tailOffset locates a
// tailSize-byte tail block (CRC-checked like any sized block); parseTail
// decodes that tail and additionally reports the byte length of the
// variable-size payload that precedes it. ParseDataBlock then hands back a
// Reader over that payload region alongside the decoded tail.
func ParseDataBlock[T any](r *source.Reader, tailOffset source.Offset, tailSize int, parseTail func([]byte) (T, source.Size, error)) (*source.Reader, T, error) {
	var zero T

	total := tailSize + int(CheckCrc32.Size())
	buf := make([]byte, total)
	st := r.NewStreamAt(tailOffset)
	if err := st.ReadExact(buf); err != nil {
		return nil, zero, err
	}
	if !crc32c.Verify(buf) {
		return nil, zero, errs.ErrInvalidBlockCRC
	}

	tail, dataSize, err := parseTail(buf[:tailSize])
	if err != nil {
		return nil, zero, err
	}

	if source.Offset(dataSize) > tailOffset {
		return nil, zero, errs.NewFormat(int64(tailOffset), "data block size exceeds its own tail offset")
	}
	dataBegin := tailOffset - source.Offset(dataSize)
	dataEnd := tailOffset
	dataRegion := r.CreateSubReader(dataBegin, &dataEnd)

	return dataRegion, tail, nil
}
