package entry

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/valuestore"
)

// UnsignedIntSchema accumulates the values flowing through one
// UnsignedInt property across every entry, choosing a minimal ByteSize at
// finalize time and detecting a property that holds the same value in
// every entry, which is promoted to a default consuming zero bytes per
// entry.
type UnsignedIntSchema struct {
	seen    bool
	allSame bool
	sameVal uint64
	maxVal  uint64
}

// Absorb folds one entry's value into the running max/uniformity state.
func (s *UnsignedIntSchema) Absorb(v uint64) {
	if !s.seen {
		s.seen, s.allSame, s.sameVal = true, true, v
	} else if s.allSame && v != s.sameVal {
		s.allSame = false
	}
	if v > s.maxVal {
		s.maxVal = v
	}
}

// Finalize returns the byte width every observed value needs. When every
// entry shared the same value, isDefault is true and the property can be
// dropped from the wire layout entirely, its value reconstructed as
// defaultVal without consuming any per-entry bytes.
func (s *UnsignedIntSchema) Finalize() (size bytesize.ByteSize, isDefault bool, defaultVal uint64) {
	if s.seen && s.allSame {
		return 0, true, s.sameVal
	}

	return bytesize.NeededFor(s.maxVal), false, 0
}

// SignedIntSchema is UnsignedIntSchema's signed counterpart.
type SignedIntSchema struct {
	seen    bool
	allSame bool
	sameVal int64
	maxVal  int64
	minVal  int64
}

func (s *SignedIntSchema) Absorb(v int64) {
	if !s.seen {
		s.seen, s.allSame, s.sameVal, s.maxVal, s.minVal = true, true, v, v, v
	} else if s.allSame && v != s.sameVal {
		s.allSame = false
	}
	if v > s.maxVal {
		s.maxVal = v
	}
	if v < s.minVal {
		s.minVal = v
	}
}

func (s *SignedIntSchema) Finalize() (size bytesize.ByteSize, isDefault bool, defaultVal int64) {
	if s.seen && s.allSame {
		return 0, true, s.sameVal
	}

	upper := bytesize.NeededForSigned(s.maxVal)
	lower := bytesize.NeededForSigned(s.minVal)
	if lower > upper {
		upper = lower
	}

	return upper, false, 0
}

// ContentAddressSchema validates the ContentAddress values flowing through
// one property. Unlike UnsignedInt/SignedInt, a ContentAddress's wire
// width is not chosen from the observed values — the tag table only lets
// a property widen in whole 4-byte "patch" links (RawProperty.NBase), a
// feature this writer does not emit — so Absorb only range-checks.
type ContentAddressSchema struct{}

// Absorb validates that a fits the single (NBase=0) ContentAddress slot:
// a 1-byte pack id and a 3-byte content id.
func (ContentAddressSchema) Absorb(a format.ContentAddress) error {
	if uint64(a.PackId) > 0xFF {
		return errs.NewArg("content address pack_id %d does not fit in 1 byte", a.PackId)
	}
	if uint64(a.ContentId) > 0xFFFFFF {
		return errs.NewArg("content address content_id %d does not fit in 3 bytes", a.ContentId)
	}

	return nil
}

// ArraySchema accumulates the byte strings flowing through one Array
// property. Every value is split at a fixed inline prefix length; the
// remainder, however long (possibly zero), is deported into an
// IndexedValueStoreCreator. This always resolves to a deported (VLArray)
// Property, even when every value happens to fit entirely inline, mirroring
// the teacher's Array schema always routing through its store_handle.
type ArraySchema struct {
	fixedLen int
	store    *valuestore.IndexedValueStoreCreator
}

// NewArraySchema returns an ArraySchema that keeps fixedLen bytes of every
// value inline and deports the rest into store.
func NewArraySchema(fixedLen int, store *valuestore.IndexedValueStoreCreator) *ArraySchema {
	return &ArraySchema{fixedLen: fixedLen, store: store}
}

// ArrayAbsorbed is one entry's split Array value: the inline prefix kept
// verbatim, and a forward reference to the deported remainder's key —
// which only settles to its final value once every AddValue call for the
// store has completed.
type ArrayAbsorbed struct {
	Base []byte
	Ref  valuestore.ValueRef
}

// Absorb splits data at the schema's fixed inline length and deports the
// remainder.
func (s *ArraySchema) Absorb(data []byte) ArrayAbsorbed {
	n := s.fixedLen
	if n > len(data) {
		n = len(data)
	}
	base := append([]byte(nil), data[:n]...)
	ref := s.store.AddValue(data[n:])

	return ArrayAbsorbed{Base: base, Ref: ref}
}

// StoreIdx, IDSize and BaseLen describe the resolved Property's wire
// shape, available once every value has been absorbed.
func (s *ArraySchema) StoreIdx() format.ValueStoreIdx { return s.store.Idx() }
func (s *ArraySchema) IDSize() bytesize.ByteSize      { return s.store.KeySize() }
func (s *ArraySchema) BaseLen() int                   { return s.fixedLen }

// Store returns the backing IndexedValueStoreCreator deported array bytes
// are appended to, so a caller assembling a whole Directory pack can pass
// it on to valuestore.AppendBlock once every EntryStoreCreator sharing it
// has finished adding entries.
func (s *ArraySchema) Store() *valuestore.IndexedValueStoreCreator { return s.store }
