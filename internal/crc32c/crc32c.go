// Package crc32c implements the CRC-32C (Castagnoli) block checksum used by
// every persisted Jubako block, per spec §3.3: polynomial 0x1EDC6F41, init
// 0xFFFFFFFF, no reflection, no xor-out.
//
// This is deliberately NOT the well-known reflected CRC-32C (the one
// hash/crc32.Castagnoli computes, used by iSCSI/SCTP): spec §3.3 calls for
// the non-reflected (MSB-first) form with xorout=0, chosen specifically so
// that appending a block's own checksum to itself and recomputing yields
// zero (the "residue" trick) — which lets a verifier swallow the trailing
// CRC transparently instead of having to split payload from checksum first.
// Because the checksum is MSB-first internally, its 4 wire bytes are written
// big-endian, unlike every other multi-byte field in the format (spec §3.2
// only fixes endianness for the data fields, not this derived checksum).
package crc32c

import "encoding/binary"

const poly uint32 = 0x1EDC6F41
const initValue uint32 = 0xFFFFFFFF

var table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for b := 0; b < 8; b++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
}

// Checksum computes the non-reflected CRC-32C of data.
func Checksum(data []byte) uint32 {
	crc := initValue
	for _, b := range data {
		crc = (crc << 8) ^ table[byte(crc>>24)^b]
	}

	return crc
}

// AppendChecksum appends the big-endian CRC-32C of data to dst.
func AppendChecksum(dst, data []byte) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], Checksum(data))

	return append(dst, buf[:]...)
}

// Verify reports whether block is a payload immediately followed by its own
// big-endian CRC-32C trailer, exploiting the residue invariant
// CRC(data ∥ stored_CRC) == 0 so the trailer never needs to be split out
// before checking.
func Verify(block []byte) bool {
	if len(block) < 4 {
		return false
	}

	return Checksum(block) == 0
}

// Split separates a block of len(payload)+4 bytes into its payload and
// verifies the trailing CRC-32C. Returns ok=false on mismatch or underflow.
func Split(block []byte) (payload []byte, ok bool) {
	if len(block) < 4 {
		return nil, false
	}

	if !Verify(block) {
		return nil, false
	}

	return block[:len(block)-4], true
}
