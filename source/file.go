package source

import (
	"io"
	"os"
	"sync"

	"github.com/arloliu/jubako/errs"
)

// FileSource is a Source backed by an *os.File, read with pread-equivalent
// positioned reads so the same handle can safely serve concurrent Stream
// and Reader views without a shared cursor.
type FileSource struct {
	file    *os.File
	size    Size
	mu      sync.Mutex
	onClose func() error
}

// NewFileSource opens path and stats its length up front.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIo(err, "open pack file")
	}

	return newFileSourceFromFile(f)
}

func newFileSourceFromFile(f *os.File) (*FileSource, error) {
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, errs.NewIo(err, "stat pack file")
	}

	return &FileSource{file: f, size: Size(info.Size())}, nil
}

func (fs *FileSource) Size() Size { return fs.size }

func (fs *FileSource) ReadAt(buf []byte, offset Offset) (int, error) {
	n, err := fs.file.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return n, errs.NewIo(err, "read pack file")
	}

	return n, err
}

func (fs *FileSource) ReadExact(buf []byte, offset Offset) error {
	n, err := fs.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return errs.NewIo(err, "pack file read_exact short read")
}

func (fs *FileSource) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.onClose != nil {
		_ = fs.onClose()
		fs.onClose = nil
	}

	return fs.file.Close()
}
