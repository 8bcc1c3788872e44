// Package entry implements a Directory pack's entry store: the resolved
// Layout of an entry store's fixed-width records, and the typed values
// those records hold once decoded against the ValueStores they indirect
// through.
//
// An entry store is read in two stages, mirroring the write side's own
// two-stage schema-then-layout construction: a RawLayout is the literal
// tagged-nibble byte sequence parsed from the store's tail; a Layout
// resolves that sequence into typed Propertys at computed byte offsets,
// grouped into Variants.
package entry

import (
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// RawPropertyKind is the tag carried by a RawProperty's leading nibble.
type RawPropertyKind uint8

const (
	RawKindPadding RawPropertyKind = iota
	RawKindContentAddress
	RawKindUnsignedInt
	RawKindSignedInt
	RawKindCharArray
	RawKindVLArray
	RawKindVariantId
)

// RawProperty is one tagged-nibble byte (plus, for some kinds, a
// continuation byte) as emitted verbatim by the writer. It is independent
// of its neighbors: resolving the semantic dependencies between a
// VariantId, a deported VLArray and its inline base array happens one
// level up, in Layout.
type RawProperty struct {
	Kind RawPropertyKind
	Size int // on-wire byte width this property occupies

	// NBase is only meaningful for RawKindContentAddress: the number of
	// additional chained "patch" ContentAddress fields that follow the
	// primary one, each contributing another 4 bytes to Size.
	NBase uint8

	// Flookup and StoreIdx are only meaningful for RawKindVLArray.
	Flookup  bool
	StoreIdx format.ValueStoreIdx
}

// ParseRawProperties decodes count tagged-nibble RawProperty encodings in
// sequence, returning them along with the number of bytes consumed.
func ParseRawProperties(buf []byte, count int) ([]RawProperty, int, error) {
	pos := 0
	out := make([]RawProperty, 0, count)
	for i := 0; i < count; i++ {
		prop, n, err := parseOneRawProperty(buf[pos:])
		if err != nil {
			return nil, 0, err
		}

		out = append(out, prop)
		pos += n
	}

	return out, pos, nil
}

func parseOneRawProperty(buf []byte) (RawProperty, int, error) {
	if len(buf) < 1 {
		return RawProperty{}, 0, errs.ErrInvalidHeaderSize
	}

	propinfo := buf[0]
	proptype := propinfo >> 4
	propdata := propinfo & 0x0F

	switch proptype {
	case 0b0000:
		return RawProperty{Kind: RawKindPadding, Size: int(propdata) + 1}, 1, nil

	case 0b0001:
		return RawProperty{
			Kind:  RawKindContentAddress,
			Size:  (int(propdata) + 1) * 4,
			NBase: propdata,
		}, 1, nil

	case 0b0010:
		kind := RawKindUnsignedInt
		if propdata&0x08 != 0 {
			kind = RawKindSignedInt
		}

		return RawProperty{Kind: kind, Size: int(propdata&0x07) + 1}, 1, nil

	case 0b0100:
		if propdata&0x08 == 0 {
			return RawProperty{Kind: RawKindCharArray, Size: int(propdata) + 1}, 1, nil
		}

		if len(buf) < 2 {
			return RawProperty{}, 0, errs.ErrInvalidHeaderSize
		}
		complement := buf[1]
		size := (int(propdata&0x03) << 8) + int(complement) + 9

		return RawProperty{Kind: RawKindCharArray, Size: size}, 2, nil

	case 0b0110, 0b0111:
		if len(buf) < 2 {
			return RawProperty{}, 0, errs.ErrInvalidHeaderSize
		}
		flookup := proptype&0b1 != 0
		size := int(propdata) + 1
		storeIdx := format.ValueStoreIdx(buf[1])

		return RawProperty{
			Kind:     RawKindVLArray,
			Size:     size,
			Flookup:  flookup,
			StoreIdx: storeIdx,
		}, 2, nil

	case 0b1000:
		return RawProperty{Kind: RawKindVariantId, Size: 1}, 1, nil

	default:
		return RawProperty{}, 0, errs.NewFormat(-1, "invalid raw property type (%#b)", proptype)
	}
}

// AppendRawProperty appends the tagged-nibble wire encoding of p to dst.
func AppendRawProperty(dst []byte, p RawProperty) []byte {
	switch p.Kind {
	case RawKindPadding:
		return append(dst, byte((p.Size-1)&0x0F))

	case RawKindContentAddress:
		return append(dst, 0b0001_0000|p.NBase)

	case RawKindUnsignedInt:
		return append(dst, 0b0010_0000|byte(p.Size-1))

	case RawKindSignedInt:
		return append(dst, 0b0010_1000|byte(p.Size-1))

	case RawKindCharArray:
		if p.Size <= 8 {
			return append(dst, 0b0100_0000|byte(p.Size-1))
		}
		rem := p.Size - 9
		high := byte((rem >> 8) & 0x03)
		low := byte(rem & 0xFF)

		return append(dst, 0b0100_1000|high, low)

	case RawKindVLArray:
		tag := byte(0b0110_0000)
		if p.Flookup {
			tag = 0b0111_0000
		}
		tag |= byte(p.Size - 1)

		return append(dst, tag, byte(p.StoreIdx))

	case RawKindVariantId:
		return append(dst, 0b1000_0000)

	default:
		return dst
	}
}
