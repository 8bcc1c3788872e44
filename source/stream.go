package source

import (
	"io"

	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
)

// Stream is a Reader plus a cursor: the sequential-read view used while
// parsing a block's fields one after another. A Stream is not safe for
// concurrent use; spawn one Stream per goroutine from a shared Reader.
type Stream struct {
	source Source
	region Region
	offset Offset
}

// NewStream builds a Stream over source, spanning [begin, end).
func NewStream(src Source, begin, end Offset) *Stream {
	return &Stream{source: src, region: NewRegion(begin, end), offset: begin}
}

// Tell returns the cursor position relative to the stream's region start.
func (s *Stream) Tell() Offset { return s.offset - s.region.Begin }

// Size returns the length of the stream's region.
func (s *Stream) Size() Size { return s.region.Size() }

// GlobalOffset returns the cursor's absolute offset within the source.
func (s *Stream) GlobalOffset() Offset { return s.offset }

// Region returns the stream's own region.
func (s *Stream) Region() Region { return s.region }

// Seek moves the cursor to pos, relative to the stream's region start.
func (s *Stream) Seek(pos Offset) error {
	target := s.region.Begin + pos
	if target > s.region.End {
		return errs.NewFormat(int64(target), "seek past end of stream")
	}
	s.offset = target

	return nil
}

// Reset rewinds the cursor to the start of the stream's region.
func (s *Stream) Reset() { s.offset = s.region.Begin }

// Skip advances the cursor by size bytes.
func (s *Stream) Skip(size Size) error {
	target := s.offset + Offset(size)
	if target > s.region.End {
		return errs.NewFormat(int64(target), "skip past end of stream")
	}
	s.offset = target

	return nil
}

// Remaining returns how many bytes lie between the cursor and the region end.
func (s *Stream) Remaining() Size { return Size(s.region.End - s.offset) }

// AsReader returns a Reader spanning the stream's own region, independent of
// the stream's own cursor.
func (s *Stream) AsReader() *Reader { return NewReader(s.source, s.region) }

func (s *Stream) advance(n Size) { s.offset += Offset(n) }

// ReadU8 reads and consumes a single byte.
func (s *Stream) ReadU8() (uint8, error) {
	v, err := ReadU8(s.source, s.offset)
	if err != nil {
		return 0, err
	}
	s.advance(1)

	return v, nil
}

// ReadU16 reads and consumes a little-endian uint16.
func (s *Stream) ReadU16() (uint16, error) {
	v, err := ReadU16(s.source, s.offset)
	if err != nil {
		return 0, err
	}
	s.advance(2)

	return v, nil
}

// ReadU32 reads and consumes a little-endian uint32.
func (s *Stream) ReadU32() (uint32, error) {
	v, err := ReadU32(s.source, s.offset)
	if err != nil {
		return 0, err
	}
	s.advance(4)

	return v, nil
}

// ReadU64 reads and consumes a little-endian uint64.
func (s *Stream) ReadU64() (uint64, error) {
	v, err := ReadU64(s.source, s.offset)
	if err != nil {
		return 0, err
	}
	s.advance(8)

	return v, nil
}

// ReadI8 reads and consumes a signed byte.
func (s *Stream) ReadI8() (int8, error) {
	v, err := s.ReadU8()

	return int8(v), err
}

// ReadI16 reads and consumes a little-endian int16.
func (s *Stream) ReadI16() (int16, error) {
	v, err := s.ReadU16()

	return int16(v), err
}

// ReadI32 reads and consumes a little-endian int32.
func (s *Stream) ReadI32() (int32, error) {
	v, err := s.ReadU32()

	return int32(v), err
}

// ReadI64 reads and consumes a little-endian int64.
func (s *Stream) ReadI64() (int64, error) {
	v, err := s.ReadU64()

	return int64(v), err
}

// ReadUsized reads and consumes an unsigned variable-width integer.
func (s *Stream) ReadUsized(size bytesize.ByteSize) (uint64, error) {
	v, err := ReadUsized(s.source, s.offset, size)
	if err != nil {
		return 0, err
	}
	s.advance(Size(size))

	return v, nil
}

// ReadIsized reads and consumes a signed variable-width integer.
func (s *Stream) ReadIsized(size bytesize.ByteSize) (int64, error) {
	v, err := ReadIsized(s.source, s.offset, size)
	if err != nil {
		return 0, err
	}
	s.advance(Size(size))

	return v, nil
}

// ReadExact fills buf from the stream and advances the cursor by len(buf).
func (s *Stream) ReadExact(buf []byte) error {
	if err := s.source.ReadExact(buf, s.offset); err != nil {
		return err
	}
	s.advance(Size(len(buf)))

	return nil
}

// ReadVec reads and consumes n bytes into a freshly allocated slice.
func (s *Stream) ReadVec(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.ReadExact(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// Read implements io.Reader, reading up to len(p) bytes without reading
// past the stream's region end.
func (s *Stream) Read(p []byte) (int, error) {
	max := s.Remaining()
	if Size(len(p)) > max {
		p = p[:max]
	}
	if len(p) == 0 {
		return 0, io.EOF
	}
	n, err := s.source.ReadAt(p, s.offset)
	s.advance(Size(n))

	return n, err
}

var _ io.Reader = (*Stream)(nil)
