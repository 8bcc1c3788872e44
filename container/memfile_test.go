package container

import (
	"errors"
	"io"

	"github.com/arloliu/jubako/source"
)

// memFile is a minimal in-memory io.WriteSeeker standing in for a real
// file: the various pack Creators need random-access writes to backfill
// their header blocks once the rest of a pack's layout is known.
type memFile struct {
	buf []byte
	pos int64
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("memfile: negative position")
	}
	m.pos = next

	return m.pos, nil
}

func (m *memFile) Bytes() []byte { return m.buf }

// liveMemSource is a source.Source view over a memFile that always reads its
// current buffer, since a Creator.Finalize call reads back bytes it is
// still in the middle of writing.
type liveMemSource struct {
	f *memFile
}

func (s *liveMemSource) Size() source.Size { return source.Size(len(s.f.buf)) }

func (s *liveMemSource) ReadAt(buf []byte, offset source.Offset) (int, error) {
	if int64(offset) >= int64(len(s.f.buf)) {
		return 0, io.EOF
	}
	n := copy(buf, s.f.buf[offset:])
	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

func (s *liveMemSource) ReadExact(buf []byte, offset source.Offset) error {
	n, err := s.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return err
}

func (s *liveMemSource) Close() error { return nil }
