// Package source implements the uniform random-and-sequential read layer
// every parser in the engine is built on: a Source abstracts over where the
// bytes physically live (heap buffer, file, memory map, or the decode buffer
// of a streaming decompressor), a Region narrows a Source to a half-open
// byte range, and a Stream adds a cursor for sequential reads.
package source

import "fmt"

// Offset is an absolute byte position within a Source or a pack.
type Offset uint64

// Size is a byte length.
type Size uint64

// IsValid reports whether o lies within [0, s].
func (o Offset) IsValid(s Size) bool { return uint64(o) <= uint64(s) }

func (o Offset) String() string { return fmt.Sprintf("Offset(%d)", uint64(o)) }
func (s Size) String() string   { return fmt.Sprintf("Size(%d)", uint64(s)) }

// Region is a half-open byte range [Begin, End) within a Source.
type Region struct {
	Begin Offset
	End   Offset
}

// NewRegion builds a Region from explicit bounds. Panics if end < begin.
func NewRegion(begin, end Offset) Region {
	if end < begin {
		panic("source: region end before begin")
	}

	return Region{Begin: begin, End: end}
}

// NewRegionToEnd builds a Region starting at begin and running either to an
// explicit end offset or to the Source's own size.
func NewRegionToEnd(begin Offset, end *Offset, sourceSize Size) Region {
	if end != nil {
		return NewRegion(begin, *end)
	}

	return NewRegion(begin, Offset(sourceSize))
}

// Size returns the length of the region.
func (r Region) Size() Size { return Size(r.End - r.Begin) }

// CutRel returns the sub-region [Begin+offset, Begin+offset+size), clamped
// to not exceed r's own end. Panics if the requested range starts beyond r.
func (r Region) CutRel(offset Offset, size Size) Region {
	begin := r.Begin + offset
	if begin > r.End {
		panic("source: cut_rel begin past region end")
	}
	end := begin + Offset(size)
	if end > r.End {
		end = r.End
	}

	return Region{Begin: begin, End: end}
}

// CutToEnd returns the sub-region [Begin+offset, End).
func (r Region) CutToEnd(offset Offset) Region {
	begin := r.Begin + offset
	if begin > r.End {
		panic("source: cut_to_end begin past region end")
	}

	return Region{Begin: begin, End: r.End}
}

// Contains reports whether the absolute offset o lies within r.
func (r Region) Contains(o Offset) bool {
	return o >= r.Begin && o < r.End
}
