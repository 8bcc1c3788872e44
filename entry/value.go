package entry

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/valuestore"
)

// ContentValue is a decoded ContentAddress property value. Base is only
// non-nil when the property declared a chained "patch" ContentAddress
// (RawProperty.NBase > 0): each link points to a fallback content, most
// specific first.
type ContentValue struct {
	Address format.ContentAddress
	Base    *ContentValue
}

// ArrayValue is a decoded Array or VLArray property value: an inline
// prefix, plus — for a deported (VLArray) property — a reference into a
// ValueStore holding the rest.
type ArrayValue struct {
	Base     []byte
	Deported bool
	StoreIdx format.ValueStoreIdx
	ValueID  uint64
}

// StoreResolver resolves a property's declared value store index to its
// read-side view, so an ArrayValue's deported tail can be materialized.
type StoreResolver func(format.ValueStoreIdx) (valuestore.ValueStore, error)

// Bytes returns v's full value: its inline base, followed by its deported
// tail read from the value store resolve locates, if any.
func (v ArrayValue) Bytes(resolve StoreResolver) ([]byte, error) {
	if !v.Deported {
		return v.Base, nil
	}

	store, err := resolve(v.StoreIdx)
	if err != nil {
		return nil, err
	}

	switch s := store.(type) {
	case *valuestore.IndexedValueStore:
		tail, err := s.GetData(v.ValueID, nil)
		if err != nil {
			return nil, err
		}

		return append(append([]byte(nil), v.Base...), tail...), nil

	case *valuestore.PlainValueStore:
		return nil, errs.NewArg("a VLArray property cannot be deported into a PlainValueStore")

	default:
		return nil, errs.ErrUnknownValueStoreKind
	}
}

// RawValueKind tags which field of a RawValue is meaningful.
type RawValueKind uint8

const (
	ValueU8 RawValueKind = iota
	ValueU16
	ValueU32
	ValueU64
	ValueI8
	ValueI16
	ValueI32
	ValueI64
	ValueContent
	ValueArray
)

// RawValue is the materialized value of one Property, read from an
// entry's fixed-width record.
type RawValue struct {
	Kind    RawValueKind
	Uint    uint64
	Int     int64
	Content ContentValue
	Array   ArrayValue
}

func unsignedKindFor(size int) RawValueKind {
	switch {
	case size == 1:
		return ValueU8
	case size == 2:
		return ValueU16
	case size == 3 || size == 4:
		return ValueU32
	default:
		return ValueU64
	}
}

func signedKindFor(size int) RawValueKind {
	switch {
	case size == 1:
		return ValueI8
	case size == 2:
		return ValueI16
	case size == 3 || size == 4:
		return ValueI32
	default:
		return ValueI64
	}
}

// CreateValue decodes p's value out of record, the entry's full
// fixed-width byte slice.
func CreateValue(p Property, record []byte) (RawValue, error) {
	switch p.Kind {
	case KindContentAddress:
		return createContentValue(p.Offset, p.NBase, record)

	case KindUnsignedInt:
		v := bytesize.ReadUint(record[p.Offset:], bytesize.ByteSize(p.Size))

		return RawValue{Kind: unsignedKindFor(p.Size), Uint: v}, nil

	case KindSignedInt:
		v := bytesize.ReadInt(record[p.Offset:], bytesize.ByteSize(p.Size))

		return RawValue{Kind: signedKindFor(p.Size), Int: v}, nil

	case KindArray:
		base := append([]byte(nil), record[p.Offset:p.Offset+p.Size]...)

		return RawValue{Kind: ValueArray, Array: ArrayValue{Base: base}}, nil

	case KindVLArray:
		valueID := bytesize.ReadUint(record[p.Offset:], bytesize.ByteSize(p.Size))

		var base []byte
		if p.BaseLen > 0 {
			start := p.Offset + p.Size
			base = append([]byte(nil), record[start:start+p.BaseLen]...)
		}

		return RawValue{Kind: ValueArray, Array: ArrayValue{
			Base:     base,
			Deported: true,
			StoreIdx: p.StoreIdx,
			ValueID:  valueID,
		}}, nil

	default:
		return RawValue{}, errs.NewFormat(-1, "unknown property kind")
	}
}

func createContentValue(offset int, nbase uint8, record []byte) (RawValue, error) {
	content, err := readContentChain(offset, nbase, record)
	if err != nil {
		return RawValue{}, err
	}

	return RawValue{Kind: ValueContent, Content: content}, nil
}

func readContentChain(offset int, nbase uint8, record []byte) (ContentValue, error) {
	if offset+format.ContentAddressSize > len(record) {
		return ContentValue{}, errs.ErrTruncated
	}

	addr := format.ParseContentAddress(record[offset : offset+format.ContentAddressSize])
	v := ContentValue{Address: addr}
	if nbase == 0 {
		return v, nil
	}

	base, err := readContentChain(offset+format.ContentAddressSize, nbase-1, record)
	if err != nil {
		return ContentValue{}, err
	}
	v.Base = &base

	return v, nil
}
