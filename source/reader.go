package source

import "sync"

// Reader is a shared Source narrowed to a Region, with no cursor of its
// own. It is the handle every pack-level component keeps around to spawn
// Streams or narrower Readers on demand; unlike a Stream it can be reused
// concurrently from multiple goroutines since it carries no mutable state.
type Reader struct {
	source Source
	region Region
}

// NewReader builds a Reader over the given region of source.
func NewReader(src Source, region Region) *Reader {
	return &Reader{source: src, region: region}
}

// NewReaderToEnd builds a Reader spanning [begin, source.Size()).
func NewReaderToEnd(src Source, begin Offset) *Reader {
	return NewReader(src, NewRegion(begin, Offset(src.Size())))
}

// Size returns the length of the reader's region.
func (r *Reader) Size() Size { return r.region.Size() }

// Region returns the reader's own region.
func (r *Reader) Region() Region { return r.region }

// Source returns the reader's underlying Source.
func (r *Reader) Source() Source { return r.source }

// CreateSubReader narrows r to [offset, offset+size) relative to r's own
// begin, clamped to r's end when end is nil.
func (r *Reader) CreateSubReader(offset Offset, end *Offset) *Reader {
	var sub Region
	if end != nil {
		sub = r.region.CutRel(offset, Size(*end-offset))
	} else {
		sub = r.region.CutToEnd(offset)
	}

	return NewReader(r.source, sub)
}

// NewStream spawns a cursor over r's full region, positioned at its start.
func (r *Reader) NewStream() *Stream {
	return &Stream{source: r.source, region: r.region, offset: r.region.Begin}
}

// NewStreamAt spawns a cursor over r's region, positioned at offset
// (relative to the region's own begin).
func (r *Reader) NewStreamAt(offset Offset) *Stream {
	return &Stream{source: r.source, region: r.region, offset: r.region.Begin + offset}
}

// ParseAt runs parse against a Stream positioned at offset (relative to r),
// the pattern used throughout the engine to implement parse_block_at /
// parse_data_block: the parser reads exactly the bytes it needs starting at
// a known offset without the caller pre-slicing a buffer.
func (r *Reader) ParseAt(offset Offset, parse func(*Stream) error) error {
	return parse(r.NewStreamAt(offset))
}

// pool of reusable small scratch buffers, shared by block-header parsers
// across Readers to avoid an allocation per parse call.
var scratchPool = sync.Pool{
	New: func() any { return make([]byte, 0, 256) },
}

// Scratch borrows a reusable buffer of at least n bytes. Callers must call
// the returned release func when done.
func Scratch(n int) (buf []byte, release func()) {
	b := scratchPool.Get().([]byte)
	if cap(b) < n {
		b = make([]byte, n)
	} else {
		b = b[:n]
	}

	return b, func() { scratchPool.Put(b[:0]) } //nolint:staticcheck
}
