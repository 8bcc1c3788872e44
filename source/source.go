package source

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
)

// Source is the root read capability every pack is opened against. All
// methods must be safe for concurrent use by multiple goroutines: a Source
// is shared by every Reader/Region/Stream view derived from it.
type Source interface {
	// Size returns the total addressable length of the source.
	Size() Size

	// ReadAt reads into buf starting at offset, returning the number of
	// bytes read. Like io.ReaderAt, it may return n < len(buf) only
	// together with a non-nil error (typically io.EOF).
	ReadAt(buf []byte, offset Offset) (int, error)

	// ReadExact reads exactly len(buf) bytes starting at offset.
	ReadExact(buf []byte, offset Offset) error

	// Close releases any resources (file handles, memory maps) held by
	// the source. Safe to call more than once.
	Close() error
}

// ReadU8 reads a single byte at offset.
func ReadU8(s Source, offset Offset) (uint8, error) {
	var buf [1]byte
	if err := s.ReadExact(buf[:], offset); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// ReadU16 reads a little-endian uint16 at offset.
func ReadU16(s Source, offset Offset) (uint16, error) {
	var buf [2]byte
	if err := s.ReadExact(buf[:], offset); err != nil {
		return 0, err
	}

	return uint16(bytesize.ReadUint(buf[:], bytesize.U2)), nil
}

// ReadU32 reads a little-endian uint32 at offset.
func ReadU32(s Source, offset Offset) (uint32, error) {
	var buf [4]byte
	if err := s.ReadExact(buf[:], offset); err != nil {
		return 0, err
	}

	return uint32(bytesize.ReadUint(buf[:], bytesize.U4)), nil
}

// ReadU64 reads a little-endian uint64 at offset.
func ReadU64(s Source, offset Offset) (uint64, error) {
	var buf [8]byte
	if err := s.ReadExact(buf[:], offset); err != nil {
		return 0, err
	}

	return bytesize.ReadUint(buf[:], bytesize.U8), nil
}

// ReadI8 reads a signed byte at offset.
func ReadI8(s Source, offset Offset) (int8, error) {
	v, err := ReadU8(s, offset)

	return int8(v), err
}

// ReadI16 reads a little-endian int16 at offset.
func ReadI16(s Source, offset Offset) (int16, error) {
	v, err := ReadU16(s, offset)

	return int16(v), err
}

// ReadI32 reads a little-endian int32 at offset.
func ReadI32(s Source, offset Offset) (int32, error) {
	v, err := ReadU32(s, offset)

	return int32(v), err
}

// ReadI64 reads a little-endian int64 at offset.
func ReadI64(s Source, offset Offset) (int64, error) {
	v, err := ReadU64(s, offset)

	return int64(v), err
}

// ReadUsized reads an unsigned variable-width integer of size bytes at
// offset.
func ReadUsized(s Source, offset Offset, size bytesize.ByteSize) (uint64, error) {
	if !size.Valid() {
		return 0, errs.NewArg("invalid byte size %d", size)
	}
	buf := make([]byte, size)
	if err := s.ReadExact(buf, offset); err != nil {
		return 0, err
	}

	return bytesize.ReadUint(buf, size), nil
}

// ReadIsized reads a signed variable-width integer of size bytes at offset.
func ReadIsized(s Source, offset Offset, size bytesize.ByteSize) (int64, error) {
	if !size.Valid() {
		return 0, errs.NewArg("invalid byte size %d", size)
	}
	buf := make([]byte, size)
	if err := s.ReadExact(buf, offset); err != nil {
		return 0, err
	}

	return bytesize.ReadInt(buf, size), nil
}
