package source

import (
	"io"
	"sync"

	"github.com/arloliu/jubako/errs"
)

// DecodeSource is a Source backed by a streaming decompressor: bytes are
// materialised lazily, on first read past what has already been decoded,
// into a growable heap buffer that stays valid for the source's lifetime.
// This is how a cluster's raw-data region is exposed as a random-access
// Source without decompressing the whole cluster body up front.
//
// Multiple Readers/Streams cut from the same DecodeSource share the one
// decode buffer: decoding happens once no matter how many blobs within the
// cluster are eventually requested.
type DecodeSource struct {
	mu       sync.Mutex
	dec      io.Reader
	buf      []byte
	decoded  int
	size     Size
	finished bool
}

// NewDecodeSource wraps dec, a decompressor that yields exactly size bytes
// of decompressed output, as a Source.
func NewDecodeSource(dec io.Reader, size Size) *DecodeSource {
	return &DecodeSource{
		dec:  dec,
		buf:  make([]byte, size),
		size: size,
	}
}

func (d *DecodeSource) Size() Size { return d.size }

// decodeTo ensures at least end bytes are available in d.buf.
func (d *DecodeSource) decodeTo(end Offset) error {
	if Size(end) <= Size(d.decoded) || d.finished {
		return nil
	}

	want := int(end) - d.decoded
	n, err := io.ReadFull(d.dec, d.buf[d.decoded:int(end)])
	d.decoded += n
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			d.finished = true
			if n < want {
				return errs.NewIo(err, "decode source: decompressor starved")
			}
		} else {
			return errs.NewIo(err, "decode source: decompressor error")
		}
	}

	return nil
}

func (d *DecodeSource) ReadAt(buf []byte, offset Offset) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	end := offset + Offset(len(buf))
	if end > Offset(d.size) {
		end = Offset(d.size)
	}
	if err := d.decodeTo(end); err != nil {
		return 0, err
	}
	if uint64(offset) >= uint64(d.size) {
		return 0, io.EOF
	}
	n := copy(buf, d.buf[offset:end])
	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

func (d *DecodeSource) ReadExact(buf []byte, offset Offset) error {
	n, err := d.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return errs.NewIo(err, "decode source read_exact short read")
}

func (d *DecodeSource) Close() error {
	if closer, ok := d.dec.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
