package valuestore

import "bytes"

// ValueRef is a forward reference to a value's final key: the byte offset a
// PlainValueStoreCreator will write it at, or the position an
// IndexedValueStoreCreator will write it at. Both can shift every time a
// new, lexicographically earlier value is added, so the ref only settles
// once every AddValue call for its store has returned; call Resolve after
// that point, typically when an entry's property values are packed at
// EntryStore finalisation time.
type ValueRef struct {
	key *uint64
}

// Resolve returns the value's final key. Must only be called once all
// AddValue calls on the owning store have completed.
func (r ValueRef) Resolve() uint64 { return *r.key }

// valueSlot is one entry in a baseStore's sorted index: dataIdx is the
// insertion-order position of the value's bytes in data, key is the shared
// cell its ValueRef resolves to.
type valueSlot struct {
	dataIdx int
	key     *uint64
}

// baseStore deduplicates values by content as they're added, keeping a
// second index of slots sorted by value bytes so a repeat add resolves to
// the existing key instead of storing a second copy. The fixOffset callback
// supplied by each concrete store kind re-derives every affected slot's key
// whenever an insertion shifts positions.
type baseStore struct {
	data   [][]byte
	sorted []valueSlot
	size   int
}

// find locates data within sorted by binary search, returning its index and
// true on an exact match, or the insertion index and false otherwise.
func (s *baseStore) find(data []byte) (int, bool) {
	lo, hi := 0, len(s.sorted)
	for lo < hi {
		mid := (lo + hi) / 2
		switch cmp := bytes.Compare(s.data[s.sorted[mid].dataIdx], data); {
		case cmp == 0:
			return mid, true
		case cmp < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}

	return lo, false
}

func (s *baseStore) addValue(data []byte, fixOffset func(*baseStore, int)) ValueRef {
	idx, found := s.find(data)
	if found {
		return ValueRef{key: s.sorted[idx].key}
	}

	s.data = append(s.data, append([]byte(nil), data...))
	dataIdx := len(s.data) - 1
	s.size += len(data)

	key := new(uint64)
	s.sorted = append(s.sorted, valueSlot{})
	copy(s.sorted[idx+1:], s.sorted[idx:])
	s.sorted[idx] = valueSlot{dataIdx: dataIdx, key: key}

	fixOffset(s, idx)

	return ValueRef{key: key}
}

// plainFixOffset mirrors the teacher's cumulative-offset recomputation: each
// value is preceded on the wire by its own 1-byte length prefix, so an
// insertion at startingPoint shifts every following value's offset by
// 1+len(data).
func plainFixOffset(s *baseStore, startingPoint int) {
	n := len(s.sorted)
	if startingPoint == n-1 {
		if startingPoint != 0 {
			prev := s.sorted[startingPoint-1]
			*s.sorted[startingPoint].key = *prev.key + 1 + uint64(len(s.data[prev.dataIdx]))
		}

		return
	}

	offset := *s.sorted[startingPoint+1].key
	for i := startingPoint; i < n; i++ {
		slot := s.sorted[i]
		*slot.key = offset
		offset += 1 + uint64(len(s.data[slot.dataIdx]))
	}
}

// indexedFixOffset assigns each value its sorted position as its key: an
// insertion at startingPoint shifts every following value's position by one.
func indexedFixOffset(s *baseStore, startingPoint int) {
	for i := startingPoint; i < len(s.sorted); i++ {
		*s.sorted[i].key = uint64(i)
	}
}
