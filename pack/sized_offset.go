package pack

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/source"
)

// SizedOffset locates a variable-size tail block: a 48-bit offset and a
// 16-bit size packed into a single little-endian u64 as
// (offset << 16) | size. It is the element type of every ptr-table in the
// engine (content_ptr, cluster_ptr, entry/value/index store ptr-tables).
type SizedOffset struct {
	Offset source.Offset
	Size   source.Size
}

// NewSizedOffset builds a SizedOffset, truncating size to 16 bits and
// offset to 48 bits per the packed-u64 wire format.
func NewSizedOffset(offset source.Offset, size source.Size) SizedOffset {
	return SizedOffset{
		Offset: offset & 0x0000FFFFFFFFFFFF,
		Size:   size & 0xFFFF,
	}
}

// IsZero reports whether both fields are zero, the sentinel for "absent".
func (s SizedOffset) IsZero() bool { return s.Offset == 0 && s.Size == 0 }

// pack returns the little-endian u64 wire representation.
func (s SizedOffset) pack() uint64 {
	return (uint64(s.Offset) << 16) | (uint64(s.Size) & 0xFFFF)
}

// ParseSizedOffset decodes an 8-byte little-endian packed SizedOffset.
func ParseSizedOffset(data []byte) SizedOffset {
	v := bytesize.ReadUint(data, bytesize.U8)

	return SizedOffset{
		Offset: source.Offset(v >> 16),
		Size:   source.Size(v & 0xFFFF),
	}
}

// AppendTo appends the 8-byte little-endian packed form of s to dst.
func (s SizedOffset) AppendTo(dst []byte) []byte {
	return bytesize.AppendUint(dst, s.pack(), bytesize.U8)
}

// ReadSizedOffsetTable decodes count consecutive SizedOffset entries
// starting at offset within r.
func ReadSizedOffsetTable(r *source.Reader, offset source.Offset, count int) ([]SizedOffset, error) {
	out := make([]SizedOffset, count)
	buf := make([]byte, 8*count)
	st := r.NewStreamAt(offset)
	if err := st.ReadExact(buf); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		out[i] = ParseSizedOffset(buf[i*8 : i*8+8])
	}

	return out, nil
}
