package source

import (
	"io"

	"github.com/arloliu/jubako/errs"
)

// MemorySource is a Source backed entirely by a heap buffer. It additionally
// exposes borrowed-slice access, used when a caller wants direct access to
// bytes without copying (e.g. handing a cluster's decompressed body to an
// entry-store parser).
type MemorySource struct {
	data []byte
}

// NewMemorySource wraps data as a Source. data is not copied; callers must
// not mutate it afterwards.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

func (m *MemorySource) Size() Size { return Size(len(m.data)) }

func (m *MemorySource) ReadAt(buf []byte, offset Offset) (int, error) {
	if uint64(offset) >= uint64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[offset:])
	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

func (m *MemorySource) ReadExact(buf []byte, offset Offset) error {
	n, err := m.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return errs.NewIo(err, "memory source read_exact short read")
}

func (m *MemorySource) Close() error { return nil }

// GetSlice returns a borrowed view of region's bytes. The returned slice is
// only valid as long as the MemorySource is not mutated; callers must
// treat it as read-only.
func (m *MemorySource) GetSlice(r Region) ([]byte, error) {
	if uint64(r.End) > uint64(len(m.data)) || r.Begin > r.End {
		return nil, errs.NewFormat(int64(r.Begin), "memory source region out of bounds")
	}

	return m.data[r.Begin:r.End], nil
}

// GetSliceUnchecked is GetSlice without bounds checking, for hot paths that
// have already validated r against the source's size.
func (m *MemorySource) GetSliceUnchecked(r Region) []byte {
	return m.data[r.Begin:r.End]
}
