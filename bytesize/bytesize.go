// Package bytesize provides the variable-width integer codec shared by every
// Jubako on-disk structure that stores a "however many bytes it takes" value:
// SizedOffset tails, cluster blob offsets, ContentAddress content ids, and
// entry-store Property widths.
//
// This package plays the same role the teacher's endian.EndianEngine plays
// for fixed-width access, generalized from "pick LE or BE for a 2/4/8-byte
// field" to "pick how many of the 1..8 low bytes of a little-endian integer
// are actually present on the wire". Jubako's wire format is always
// little-endian (spec §3.2), so there is no byte-order choice left to make;
// what varies is only the width.
package bytesize

import "github.com/arloliu/jubako/errs"

// ByteSize is the width, in bytes, of a variable-width integer encoding.
// Valid values are 1..8 inclusive.
type ByteSize uint8

const (
	U1 ByteSize = 1
	U2 ByteSize = 2
	U3 ByteSize = 3
	U4 ByteSize = 4
	U5 ByteSize = 5
	U6 ByteSize = 6
	U7 ByteSize = 7
	U8 ByteSize = 8
)

// Valid reports whether s is a defined ByteSize (1..8).
func (s ByteSize) Valid() bool {
	return s >= U1 && s <= U8
}

// FromInt converts a plain byte count into a ByteSize, failing outside 1..8.
func FromInt(n int) (ByteSize, error) {
	if n < 1 || n > 8 {
		return 0, errs.NewFormat(-1, "invalid byte size %d, want 1..8", n)
	}

	return ByteSize(n), nil
}

// MaxUnsigned returns the largest unsigned value representable in s bytes.
func (s ByteSize) MaxUnsigned() uint64 {
	if s == U8 {
		return ^uint64(0)
	}

	return (uint64(1) << (8 * uint(s))) - 1
}

// NeededFor returns the smallest ByteSize that can hold the unsigned value v.
func NeededFor(v uint64) ByteSize {
	for s := U1; s < U8; s++ {
		if v <= s.MaxUnsigned() {
			return s
		}
	}

	return U8
}

// NeededForSigned returns the smallest ByteSize that can hold the signed
// value v using two's-complement sign extension.
func NeededForSigned(v int64) ByteSize {
	for s := U1; s < U8; s++ {
		bits := 8 * uint(s)
		lo := -(int64(1) << (bits - 1))
		hi := (int64(1) << (bits - 1)) - 1
		if v >= lo && v <= hi {
			return s
		}
	}

	return U8
}

// ReadUint reads an s-byte little-endian unsigned integer from data, zero
// padding into the unused high bytes of the returned uint64.
//
// Parameters:
//   - data: must have length >= int(s)
//   - s: the encoded width
//
// Returns the decoded value.
func ReadUint(data []byte, s ByteSize) uint64 {
	var v uint64
	for i := 0; i < int(s); i++ {
		v |= uint64(data[i]) << (8 * uint(i))
	}

	return v
}

// WriteUint writes v into the low s bytes of dst using little-endian order.
// dst must have length >= int(s). Truncates v if it does not fit in s bytes.
func WriteUint(dst []byte, v uint64, s ByteSize) {
	for i := 0; i < int(s); i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}

// AppendUint appends v, encoded in s little-endian bytes, to dst.
func AppendUint(dst []byte, v uint64, s ByteSize) []byte {
	var tmp [8]byte
	WriteUint(tmp[:], v, s)

	return append(dst, tmp[:s]...)
}

// ReadInt reads an s-byte little-endian two's-complement signed integer from
// data, sign-extending into the unused high bytes.
func ReadInt(data []byte, s ByteSize) int64 {
	u := ReadUint(data, s)
	bits := 8 * uint(s)
	if bits < 64 && u&(uint64(1)<<(bits-1)) != 0 {
		u |= ^uint64(0) << bits
	}

	return int64(u)
}

// WriteInt writes the low s bytes of v's two's-complement representation
// into dst using little-endian order.
func WriteInt(dst []byte, v int64, s ByteSize) {
	WriteUint(dst, uint64(v), s)
}

// AppendInt appends v, encoded in s little-endian bytes, to dst.
func AppendInt(dst []byte, v int64, s ByteSize) []byte {
	return AppendUint(dst, uint64(v), s)
}
