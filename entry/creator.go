package entry

import (
	"io"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// PropertyDef declares one property of an EntryStoreCreator: its kind and
// the schema accumulator that tracks every entry's value for that
// property. Exactly one of the schema fields is set, matching Kind.
type PropertyDef struct {
	Kind           PropertyKind
	UnsignedInt    *UnsignedIntSchema
	SignedInt      *SignedIntSchema
	ContentAddress *ContentAddressSchema
	Array          *ArraySchema
}

// entryValue is one entry's absorbed value for one property, ahead of the
// schema's byte width being finalized.
type entryValue struct {
	Uint    uint64
	Int     int64
	Content format.ContentAddress
	Array   ArrayAbsorbed
}

// EntryStoreCreator accumulates entries against a declared set of
// PropertyDefs and, once every entry has been added, resolves the
// minimal-width Layout those values need and renders the fixed-width
// entry records. It supports a single Variant — the common case spec.md's
// scenarios exercise; a multi-variant store must still be assembled by
// hand from separately-finalized creators sharing a common EntryStoreIdx.
type EntryStoreCreator struct {
	idx     format.EntryStoreIdx
	props   []*PropertyDef
	entries [][]entryValue
}

// NewEntryStoreCreator returns an empty EntryStoreCreator bound to store
// slot idx, declaring props in order.
func NewEntryStoreCreator(idx format.EntryStoreIdx, props []*PropertyDef) *EntryStoreCreator {
	return &EntryStoreCreator{idx: idx, props: props}
}

func (c *EntryStoreCreator) Idx() format.EntryStoreIdx { return c.idx }

// AddEntry absorbs one entry's values, one per declared property, in
// order. The dynamic type of each value must match its property's Kind:
// uint64 for UnsignedInt, int64 for SignedInt, format.ContentAddress for
// ContentAddress, []byte for an Array.
func (c *EntryStoreCreator) AddEntry(values []any) error {
	if len(values) != len(c.props) {
		return errs.NewArg("entry has %d values but store declares %d properties", len(values), len(c.props))
	}

	row := make([]entryValue, len(c.props))
	for i, p := range c.props {
		switch p.Kind {
		case KindUnsignedInt:
			v, ok := values[i].(uint64)
			if !ok {
				return errs.NewArg("property %d expects a uint64 value", i)
			}
			p.UnsignedInt.Absorb(v)
			row[i].Uint = v

		case KindSignedInt:
			v, ok := values[i].(int64)
			if !ok {
				return errs.NewArg("property %d expects an int64 value", i)
			}
			p.SignedInt.Absorb(v)
			row[i].Int = v

		case KindContentAddress:
			v, ok := values[i].(format.ContentAddress)
			if !ok {
				return errs.NewArg("property %d expects a format.ContentAddress value", i)
			}
			if err := p.ContentAddress.Absorb(v); err != nil {
				return err
			}
			row[i].Content = v

		case KindVLArray:
			v, ok := values[i].([]byte)
			if !ok {
				return errs.NewArg("property %d expects a []byte value", i)
			}
			row[i].Array = p.Array.Absorb(v)

		default:
			return errs.NewArg("property %d declares an unsupported kind", i)
		}
	}

	c.entries = append(c.entries, row)

	return nil
}

// Finalize resolves every property's minimal wire width (dropping
// all-entries-share-one-value properties to a zero-byte default) and
// renders every buffered entry's fixed-width record back to back.
// Array/VLArray property values are only valid to resolve after every
// AddValue call against their backing ValueStoreCreator across the whole
// Directory pack has completed, since a later insertion can still shift an
// earlier value's key.
func (c *EntryStoreCreator) Finalize() (Layout, []byte, error) {
	layout, _, isDefault, err := c.resolveLayout()
	if err != nil {
		return Layout{}, nil, err
	}

	records := c.renderRecords(layout, isDefault)

	return layout, records, nil
}

// resolveLayout finalizes every property's schema into its minimal-width
// RawProperty (or drops it, for an all-entries-share-one-value default) and
// resolves the resulting tagged-nibble sequence into a Layout. It is shared
// between Finalize and AppendBlock so both render from the same resolution.
func (c *EntryStoreCreator) resolveLayout() (layout Layout, raw []RawProperty, isDefault []bool, err error) {
	raw = make([]RawProperty, 0, len(c.props))
	isDefault = make([]bool, len(c.props))
	propSize := make([]int, len(c.props))

	for i, p := range c.props {
		switch p.Kind {
		case KindUnsignedInt:
			size, def, _ := p.UnsignedInt.Finalize()
			isDefault[i] = def
			if !def {
				raw = append(raw, RawProperty{Kind: RawKindUnsignedInt, Size: int(size)})
				propSize[i] = int(size)
			}

		case KindSignedInt:
			size, def, _ := p.SignedInt.Finalize()
			isDefault[i] = def
			if !def {
				raw = append(raw, RawProperty{Kind: RawKindSignedInt, Size: int(size)})
				propSize[i] = int(size)
			}

		case KindContentAddress:
			raw = append(raw, RawProperty{Kind: RawKindContentAddress, Size: format.ContentAddressSize})
			propSize[i] = format.ContentAddressSize

		case KindVLArray:
			idSize := p.Array.IDSize()
			baseLen := p.Array.BaseLen()
			raw = append(raw, RawProperty{
				Kind:     RawKindVLArray,
				Size:     int(idSize),
				Flookup:  baseLen > 0,
				StoreIdx: p.Array.StoreIdx(),
			})
			if baseLen > 0 {
				raw = append(raw, RawProperty{Kind: RawKindCharArray, Size: baseLen})
			}
			propSize[i] = int(idSize) + baseLen

		default:
			return Layout{}, nil, nil, errs.NewArg("property %d declares an unsupported kind", i)
		}
	}

	entrySize := 0
	for _, s := range propSize {
		entrySize += s
	}

	layout, err = BuildLayout(raw, entrySize)
	if err != nil {
		return Layout{}, nil, nil, err
	}
	if len(layout.Variants) != 1 {
		return Layout{}, nil, nil, errs.NewArg("entry store creator only supports a single variant, got %d", len(layout.Variants))
	}

	return layout, raw, isDefault, nil
}

// renderRecords renders every buffered entry's fixed-width record back to
// back, against the already-resolved layout and its dropped-default mask.
func (c *EntryStoreCreator) renderRecords(layout Layout, isDefault []bool) []byte {
	variant := layout.Variants[0]
	records := make([]byte, 0, layout.EntrySize*len(c.entries))

	for _, row := range c.entries {
		rec := make([]byte, layout.EntrySize)
		propIdx := 0
		for i, p := range c.props {
			if isDefault[i] {
				continue
			}

			prop := variant.Properties[propIdx]
			switch p.Kind {
			case KindUnsignedInt:
				bytesize.WriteUint(rec[prop.Offset:], row[i].Uint, bytesize.ByteSize(prop.Size))

			case KindSignedInt:
				bytesize.WriteInt(rec[prop.Offset:], row[i].Int, bytesize.ByteSize(prop.Size))

			case KindContentAddress:
				encoded := row[i].Content.AppendTo(nil)
				copy(rec[prop.Offset:prop.Offset+prop.Size], encoded)

			case KindVLArray:
				bytesize.WriteUint(rec[prop.Offset:], row[i].Array.Ref.Resolve(), bytesize.ByteSize(prop.Size))
				if prop.BaseLen > 0 {
					copy(rec[prop.Offset+prop.Size:], row[i].Array.Base)
				}
			}
			propIdx++
		}
		records = append(records, rec...)
	}

	return records
}

// AppendBlock writes the entry store's data block (the rendered records,
// CRC-32C checked) immediately followed by its tail block (kind byte,
// entry size, variant count, property count, the tagged-nibble RawProperty
// sequence and the data size, also CRC-32C checked) to w. startOffset is
// the absolute position w is about to write at. The returned SizedOffset
// locates the tail exactly as a Directory pack's entry_store_ptr table
// stores it, mirroring valuestore.AppendBlock.
func (c *EntryStoreCreator) AppendBlock(w io.Writer, startOffset int64) (pack.SizedOffset, error) {
	layout, raw, isDefault, err := c.resolveLayout()
	if err != nil {
		return pack.SizedOffset{}, err
	}
	records := c.renderRecords(layout, isDefault)

	dataBlock := blockparser.AppendSizedBlock(nil, records, blockparser.CheckCrc32)
	if _, err := w.Write(dataBlock); err != nil {
		return pack.SizedOffset{}, err
	}

	tailOffset := startOffset + int64(len(dataBlock))

	tailFields := make([]byte, 0, 5+2*len(raw)+8)
	tailFields = append(tailFields, byte(storeKindPlain))
	tailFields = bytesize.AppendUint(tailFields, uint64(layout.EntrySize), bytesize.U2)
	tailFields = append(tailFields, byte(len(layout.Variants)))
	tailFields = append(tailFields, byte(len(raw)))
	for _, p := range raw {
		tailFields = AppendRawProperty(tailFields, p)
	}
	tailFields = bytesize.AppendUint(tailFields, uint64(len(records)), bytesize.U8)

	tailBlock := blockparser.AppendSizedBlock(nil, tailFields, blockparser.CheckCrc32)
	if _, err := w.Write(tailBlock); err != nil {
		return pack.SizedOffset{}, err
	}

	return pack.NewSizedOffset(source.Offset(tailOffset), source.Size(len(tailFields))), nil
}
