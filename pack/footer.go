package pack

import (
	"bytes"

	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/blake3sum"
	"github.com/arloliu/jubako/internal/crc32c"
	"github.com/arloliu/jubako/source"
)

// FooterSize is the width of the reversed-header sentinel that terminates
// every pack: a byte-for-byte reversal of the pack's own leading
// HeaderBlockSize bytes (field block + CRC).
const FooterSize = HeaderBlockSize

// CheckInfo is the pack-level integrity record every pack carries just
// before its footer: either no check at all, or a whole-pack BLAKE3 digest.
type CheckInfo struct {
	Kind format.CheckKind
	Hash [blake3sum.Size]byte // valid only when Kind == CheckKindBlake3
}

// Size returns the on-disk width of the CheckInfo record (kind byte plus
// digest when present), not counting its own CRC-32C trailer.
func (c CheckInfo) Size() source.Size {
	if c.Kind == format.CheckKindBlake3 {
		return 1 + blake3sum.Size
	}

	return 1
}

// ParseCheckInfoAt reads a CheckInfo block starting at offset within r.
// Its leading kind byte decides the field width: 1 (CheckKindNone) or
// 1+blake3sum.Size (CheckKindBlake3). The trailing CRC-32C is verified,
// and the returned size counts the field bytes plus that 4-byte CRC.
func ParseCheckInfoAt(r *source.Reader, offset source.Offset) (CheckInfo, source.Size, error) {
	st := r.NewStreamAt(offset)
	kindByte, err := st.ReadU8()
	if err != nil {
		return CheckInfo{}, 0, err
	}
	kind := format.CheckKind(kindByte)
	switch kind {
	case format.CheckKindNone:
		if err := verifyTrailingCrc(r, offset, 1); err != nil {
			return CheckInfo{}, 0, err
		}

		return CheckInfo{Kind: kind}, 1 + 4, nil
	case format.CheckKindBlake3:
		hashBuf, err := st.ReadVec(blake3sum.Size)
		if err != nil {
			return CheckInfo{}, 0, err
		}
		total := 1 + blake3sum.Size
		if err := verifyTrailingCrc(r, offset, total); err != nil {
			return CheckInfo{}, 0, err
		}
		var h [blake3sum.Size]byte
		copy(h[:], hashBuf)

		return CheckInfo{Kind: kind, Hash: h}, source.Size(total) + 4, nil
	default:
		return CheckInfo{}, 0, errs.NewFormat(int64(offset), "unknown check kind %d", kindByte)
	}
}

func verifyTrailingCrc(r *source.Reader, offset source.Offset, fieldsLen int) error {
	buf := make([]byte, fieldsLen+4)
	st := r.NewStreamAt(offset)
	if err := st.ReadExact(buf); err != nil {
		return err
	}
	if !crc32c.Verify(buf) {
		return errs.ErrInvalidBlockCRC
	}

	return nil
}

// AppendTo appends c's field bytes and CRC-32C trailer to dst.
func (c CheckInfo) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(c.Kind))
	if c.Kind == format.CheckKindBlake3 {
		dst = append(dst, c.Hash[:]...)
	}
	fieldsStart := len(dst) - int(c.Size())

	return crc32c.AppendChecksum(dst, dst[fieldsStart:])
}

// Verify checks the CheckInfo's BLAKE3 digest against the bytes of source
// covered by checkedRegion, skipping the byte ranges listed in safeZones
// (used only by the Manifest pack; pass nil elsewhere). Reports true
// (no error) when Kind is CheckKindNone, since there is nothing to verify.
func (c CheckInfo) Verify(src source.Source, checkedRegion source.Region, safeZones []blake3sum.Zone) (bool, error) {
	if c.Kind == format.CheckKindNone {
		return true, nil
	}

	buf := make([]byte, checkedRegion.Size())
	if err := src.ReadExact(buf, checkedRegion.Begin); err != nil {
		return false, err
	}

	var got [blake3sum.Size]byte
	if len(safeZones) == 0 {
		got = blake3sum.Sum(buf)
	} else {
		got = blake3sum.SumExcluding(buf, safeZones)
	}

	return bytes.Equal(got[:], c.Hash[:]), nil
}

// ReverseHeaderFooter returns the byte-reversal of a pack's leading
// HeaderBlockSize bytes, the sentinel every pack ends with.
func ReverseHeaderFooter(headerBlock []byte) []byte {
	out := make([]byte, len(headerBlock))
	for i, b := range headerBlock {
		out[len(headerBlock)-1-i] = b
	}

	return out
}

// VerifyFooter reports whether footer is exactly the byte-reversal of
// headerBlock (spec invariant: "trailing 64 bytes equal the byte-reversal
// of its leading 64 bytes").
func VerifyFooter(headerBlock, footer []byte) bool {
	return bytes.Equal(ReverseHeaderFooter(headerBlock), footer)
}
