package rangesearch

import (
	"github.com/arloliu/jubako/entry"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// Comparator compares one candidate entry against whatever criteria it was
// built with. Ordered must stay constant across a single Find call: Finder
// uses it once, up front, to pick binary search or a linear scan.
type Comparator interface {
	// Ordered reports whether entries in the searched range increase
	// monotonically under Compare, letting Finder use binary search.
	Ordered() bool
	// Compare returns a negative, zero, or positive int as entry idx
	// compares less than, equal to, or greater than the comparator's
	// target.
	Compare(idx format.EntryIdx) (int, error)
}

// Finder walks a contiguous [offset, offset+count) sub-range of an
// EntryStore's entries, resolving an id to its AnyEntry or locating an
// entry a Comparator reports Equal.
type Finder struct {
	store  *entry.EntryStore
	offset format.EntryIdx
	count  uint32
}

// NewFinder binds a Finder to store's [offset, offset+count) sub-range.
func NewFinder(store *entry.EntryStore, offset format.EntryIdx, count uint32) *Finder {
	return &Finder{store: store, offset: offset, count: count}
}

// Count reports the number of entries in the Finder's range.
func (f *Finder) Count() uint32 { return f.count }

// GetEntry materializes the id'th entry of the Finder's range (0-based,
// relative to its offset).
func (f *Finder) GetEntry(id uint32) (*entry.AnyEntry, error) {
	if id >= f.count {
		return nil, errs.ErrEntryIdxOutOfRange
	}

	return f.store.CreateAnyEntry(f.offset + format.EntryIdx(id))
}

// Find locates an entry in the Finder's range cmp reports Equal (Compare
// returning 0) for. When cmp.Ordered() is true it runs binary search,
// maintaining the invariant that everything before left compares Less and
// everything at or after right compares Greater, and returns whichever
// Equal entry the search lands on first, not necessarily the lowest id;
// otherwise it scans linearly from 0 and returns the lowest Equal id. Returns found=false, with no error, if nothing
// compares Equal.
func (f *Finder) Find(cmp Comparator) (id uint32, found bool, err error) {
	if cmp.Ordered() {
		return f.findBinary(cmp)
	}

	return f.findLinear(cmp)
}

func (f *Finder) findBinary(cmp Comparator) (uint32, bool, error) {
	left, right := uint32(0), f.count
	for left < right {
		size := right - left
		mid := left + size/2

		c, err := cmp.Compare(f.offset + format.EntryIdx(mid))
		if err != nil {
			return 0, false, err
		}

		switch {
		case c < 0:
			left = mid + 1
		case c > 0:
			right = mid
		default:
			return mid, true, nil
		}
	}

	return 0, false, nil
}

func (f *Finder) findLinear(cmp Comparator) (uint32, bool, error) {
	for id := uint32(0); id < f.count; id++ {
		c, err := cmp.Compare(f.offset + format.EntryIdx(id))
		if err != nil {
			return 0, false, err
		}
		if c == 0 {
			return id, true, nil
		}
	}

	return 0, false, nil
}
