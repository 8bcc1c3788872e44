package entry

import (
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// PropertyKind is the resolved kind of a Property: unlike a RawProperty, a
// Padding or VariantId raw property never becomes a Property of its own —
// they only ever shift the running offset other Propertys are computed
// against.
type PropertyKind uint8

const (
	KindContentAddress PropertyKind = iota
	KindUnsignedInt
	KindSignedInt
	KindArray
	KindVLArray
)

// Property is one typed field of a Variant, at a byte offset computed once
// when the Layout is built.
type Property struct {
	Offset int
	Size   int // on-wire byte width of the property itself (excludes any merged base array)
	Kind   PropertyKind

	// NBase is only meaningful for KindContentAddress: how many chained
	// patch ContentAddress fields follow the primary one.
	NBase uint8

	// StoreIdx and BaseLen are only meaningful for KindVLArray: the value
	// store the deported tail lives in, and the length of the inline base
	// array merged in from a following CharArray raw property (0 if the
	// property carries no inline base, i.e. Flookup was false).
	StoreIdx format.ValueStoreIdx
	BaseLen  int
}

// Variant is one alternative shape an entry can take, selected by the
// entry's VariantId byte when an EntryStore's Layout declares more than
// one.
type Variant struct {
	Properties []Property
}

// Layout is an EntryStore's resolved structure: every Variant's Propertys
// at their computed offsets. EntrySize is the size of every entry; a
// Variant's properties may cover fewer bytes than that (see BuildLayout).
type Layout struct {
	Variants  []Variant
	EntrySize int
}

// HasVariantID reports whether an entry's first byte selects among more
// than one Variant.
func (l Layout) HasVariantID() bool { return len(l.Variants) > 1 }

// BuildLayout groups a flat RawProperty sequence into Variants, splitting a
// new Variant every time the running size of raw properties consumed so far
// reaches entrySize exactly. A group that never reaches entrySize exactly —
// always true of the last group, and the only group when a Layout declares
// just one Variant — is still resolved once every raw property has been
// consumed: entrySize is a split marker between Variants, not a constraint
// every individual Variant's properties must sum to exactly, so a Variant's
// trailing bytes may go unrepresented by any Property. Within each Variant a
// VariantId raw property (only legal first) and Padding raw properties
// consume bytes without producing a Property; a VLArray raw property with
// Flookup set consumes the following CharArray raw property as its inline
// base array.
func BuildLayout(raw []RawProperty, entrySize int) (Layout, error) {
	var (
		variants    []Variant
		group       []RawProperty
		currentSize int
	)

	for _, rp := range raw {
		group = append(group, rp)
		currentSize += rp.Size

		switch {
		case currentSize > entrySize:
			return Layout{}, errs.ErrVariantSizeMismatch
		case currentSize == entrySize:
			variant, err := buildVariant(group)
			if err != nil {
				return Layout{}, err
			}
			variants = append(variants, variant)
			group = nil
			currentSize = 0
		}
	}

	if len(group) > 0 {
		variant, err := buildVariant(group)
		if err != nil {
			return Layout{}, err
		}
		variants = append(variants, variant)
	}

	return Layout{Variants: variants, EntrySize: entrySize}, nil
}

// buildVariant resolves every raw property of one Variant's group in order,
// computing each resulting Property's byte offset.
func buildVariant(group []RawProperty) (Variant, error) {
	var (
		properties []Property
		offset     int
		idx        int
	)

	for idx < len(group) {
		prop, newIdx, newOffset, err := buildProperty(idx, offset, group)
		if err != nil {
			return Variant{}, err
		}

		idx = newIdx
		offset = newOffset
		if prop != nil {
			properties = append(properties, *prop)
		}
	}

	return Variant{Properties: properties}, nil
}

// buildProperty resolves the raw property at group[idx], returning the
// resulting Property (nil for Padding/VariantId, which produce none), the
// index of the next unconsumed raw property, and the offset past it.
func buildProperty(idx int, offset int, group []RawProperty) (*Property, int, int, error) {
	rp := group[idx]

	switch rp.Kind {
	case RawKindVariantId:
		if idx != 0 {
			return nil, 0, 0, errs.NewFormat(-1, "VariantId cannot appear in the middle of a variant")
		}

		return nil, idx + 1, offset + rp.Size, nil

	case RawKindPadding:
		return nil, idx + 1, offset + rp.Size, nil

	case RawKindContentAddress:
		return &Property{
			Offset: offset,
			Size:   rp.Size,
			Kind:   KindContentAddress,
			NBase:  rp.NBase,
		}, idx + 1, offset + rp.Size, nil

	case RawKindUnsignedInt:
		return &Property{Offset: offset, Size: rp.Size, Kind: KindUnsignedInt}, idx + 1, offset + rp.Size, nil

	case RawKindSignedInt:
		return &Property{Offset: offset, Size: rp.Size, Kind: KindSignedInt}, idx + 1, offset + rp.Size, nil

	case RawKindCharArray:
		return &Property{Offset: offset, Size: rp.Size, Kind: KindArray}, idx + 1, offset + rp.Size, nil

	case RawKindVLArray:
		nextIdx := idx + 1
		nextOffset := offset + rp.Size
		baseLen := 0

		if rp.Flookup {
			if nextIdx >= len(group) || group[nextIdx].Kind != RawKindCharArray {
				return nil, 0, 0, errs.NewFormat(-1, "a lookup VLArray property must be followed by a CharArray property")
			}
			baseLen = group[nextIdx].Size
			nextOffset += baseLen
			nextIdx++
		}

		return &Property{
			Offset:   offset,
			Size:     rp.Size,
			Kind:     KindVLArray,
			StoreIdx: rp.StoreIdx,
			BaseLen:  baseLen,
		}, nextIdx, nextOffset, nil

	default:
		return nil, 0, 0, errs.NewFormat(-1, "unknown raw property kind")
	}
}
