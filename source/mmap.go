package source

import (
	"io"

	"golang.org/x/exp/mmap"

	"github.com/arloliu/jubako/errs"
)

// mmapThreshold is a region size in bytes that no code path reads:
// IntoMemorySource always copies a region into a heap buffer, whatever its
// size, and an MmapSource is only ever created by NewMmapSource.
const mmapThreshold = 1024

// MmapSource is a Source backed by a memory-mapped file region. Reads are
// plain memory copies; the kernel handles paging the backing file in.
type MmapSource struct {
	ra   *mmap.ReaderAt
	size Size
}

// NewMmapSource memory-maps the file at path.
func NewMmapSource(path string) (*MmapSource, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, errs.NewIo(err, "mmap pack file")
	}

	return &MmapSource{ra: ra, size: Size(ra.Len())}, nil
}

func (m *MmapSource) Size() Size { return m.size }

func (m *MmapSource) ReadAt(buf []byte, offset Offset) (int, error) {
	n, err := m.ra.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return n, errs.NewIo(err, "read mmap region")
	}

	return n, err
}

func (m *MmapSource) ReadExact(buf []byte, offset Offset) error {
	n, err := m.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return errs.NewIo(err, "mmap read_exact short read")
}

func (m *MmapSource) Close() error { return m.ra.Close() }

// GetSlice is unavailable on a true mmap source without unsafe pointer
// tricks golang.org/x/exp/mmap deliberately does not expose, so GetSlice
// returns a freshly allocated heap copy of the region instead.
func (m *MmapSource) GetSlice(r Region) ([]byte, error) {
	buf := make([]byte, r.Size())
	if err := m.ReadExact(buf, r.Begin); err != nil {
		return nil, err
	}

	return buf, nil
}

// IntoMemorySource materialises region into a heap buffer, mirroring the
// reader-side into_memory_source conversion: large regions still come from
// a single ReadAt syscall-equivalent rather than the scalar-at-a-time path.
func IntoMemorySource(s Source, r Region) (*MemorySource, Region, error) {
	buf := make([]byte, r.Size())
	if err := s.ReadExact(buf, r.Begin); err != nil {
		return nil, Region{}, err
	}

	return NewMemorySource(buf), NewRegion(0, Offset(len(buf))), nil
}
