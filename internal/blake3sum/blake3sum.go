// Package blake3sum wraps github.com/zeebo/blake3 with the two shapes the
// engine needs: a whole-pack digest used by CheckInfo (spec §3.3), and a
// "safe zone" digest used by the Manifest pack's CheckInfo, which must
// exclude a PackInfo record's pack_location tail (bytes 38..252 of each
// 256-byte record) so a locator can rewrite a pack's on-disk path without
// invalidating the Manifest's own checksum.
package blake3sum

import (
	"io"

	"github.com/zeebo/blake3"
)

// Size is the length in bytes of a BLAKE3 digest as stored in a CheckInfo
// record.
const Size = 32

// Sum returns the BLAKE3 digest of data.
func Sum(data []byte) [Size]byte {
	return blake3.Sum256(data)
}

// SumReader streams src through BLAKE3 and returns its digest, without
// buffering src in memory.
func SumReader(src io.Reader) ([Size]byte, error) {
	h := blake3.New()
	if _, err := io.Copy(h, src); err != nil {
		return [Size]byte{}, err
	}

	var out [Size]byte
	copy(out[:], h.Sum(nil))

	return out, nil
}

// Zone marks a byte range of a pack that must be skipped when computing the
// pack's whole-file check digest.
type Zone struct {
	Start, End int64 // [Start, End), both absolute pack offsets
}

// SumExcluding hashes all of data except the bytes covered by each zone.
// Zones need not be sorted; overlapping or out-of-range zones are clamped to
// data's bounds. Used by the Manifest pack writer/reader to hash every
// PackInfo record while skipping each record's pack_location safe zone.
func SumExcluding(data []byte, zones []Zone) [Size]byte {
	h := blake3.New()

	n := int64(len(data))
	skip := make([]bool, n+1)
	for _, z := range zones {
		start, end := z.Start, z.End
		if start < 0 {
			start = 0
		}
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			skip[i] = true
		}
	}

	var run []byte
	flush := func() {
		if len(run) > 0 {
			_, _ = h.Write(run)
			run = run[:0]
		}
	}
	for i := int64(0); i < n; i++ {
		if skip[i] {
			flush()

			continue
		}
		run = append(run, data[i])
	}
	flush()

	var out [Size]byte
	sum := h.Sum(nil)
	copy(out[:], sum)

	return out
}
