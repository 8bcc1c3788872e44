package cluster

import (
	"io"
	"sync"

	"github.com/arloliu/jubako/compress"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// writeTask is the unit of work the ClusterWriter goroutine consumes off
// the fusion channel. Exactly one of raw (the uncompressed fast path,
// streamed to the file by the writer itself) or compressed (a
// ClusterCompressor's finished output, appended verbatim alongside its
// already-built tail) is set.
type writeTask struct {
	idx        format.ClusterIdx
	raw        *ClusterCreator
	compressed []byte
	tail       Tail
}

// WriterProxy is the client-facing handle to the parallel compression
// pipeline described by the engine's writer-side concurrency model: a
// fixed pool of ClusterCompressor goroutines drain a dispatch channel
// (SPMC: one client, many compressors) and forward finished bodies onto a
// fusion channel (MPSC: many compressors plus the client's own
// uncompressed fast path, one writer); a single goroutine is the sole
// writer to the output and records each cluster's SizedOffset into a
// late-bound addressVow.
type WriterProxy struct {
	dispatch chan *ClusterCreator
	fusion   chan writeTask
	inFlight chan struct{}

	workers    sync.WaitGroup
	writerDone chan struct{}

	mu        sync.Mutex
	addresses []*addressVow
	writerErr error
}

// NewWriterProxy starts nbWorkers ClusterCompressor goroutines and one
// ClusterWriter goroutine appending sequentially to out, which must
// already be positioned where the first cluster's bytes belong. Backpressure
// caps the number of compressed clusters in flight at 2*nbWorkers.
func NewWriterProxy(out io.Writer, nbWorkers int) *WriterProxy {
	if nbWorkers < 1 {
		nbWorkers = 1
	}

	p := &WriterProxy{
		dispatch:   make(chan *ClusterCreator, nbWorkers),
		fusion:     make(chan writeTask, nbWorkers*2),
		inFlight:   make(chan struct{}, nbWorkers*2),
		writerDone: make(chan struct{}),
	}

	for i := 0; i < nbWorkers; i++ {
		p.workers.Add(1)
		go p.runCompressor()
	}
	go p.runWriter(out)

	return p
}

// Dispatch submits cluster to the pipeline. The caller must have already
// pre-assigned cluster's ClusterIdx (via NewClusterCreator) before calling
// Dispatch, since the address slot is registered here. Compressed clusters
// are routed through the compressor pool; Compression() == None clusters
// bypass it and go straight to the writer. Blocks while 2*nbWorkers
// compressed clusters are already in flight.
func (p *WriterProxy) Dispatch(cluster *ClusterCreator) {
	p.registerVow(cluster.idx)

	if cluster.compression == format.CompressionNone {
		p.fusion <- writeTask{idx: cluster.idx, raw: cluster}

		return
	}

	p.inFlight <- struct{}{}
	p.dispatch <- cluster
}

// Finalize closes the dispatch and fusion channels, waits for every
// compressor and the writer goroutine to drain, and returns the final
// cluster_addresses table in ClusterIdx order. The caller must not call
// Dispatch again afterwards.
func (p *WriterProxy) Finalize() ([]pack.SizedOffset, error) {
	close(p.dispatch)
	p.workers.Wait()
	close(p.fusion)
	<-p.writerDone

	p.mu.Lock()
	err := p.writerErr
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]pack.SizedOffset, len(p.addresses))
	for i, v := range p.addresses {
		if v == nil {
			continue
		}
		out[i] = v.Wait()
	}

	return out, nil
}

func (p *WriterProxy) registerVow(idx format.ClusterIdx) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := int(idx)
	for len(p.addresses) <= i {
		p.addresses = append(p.addresses, nil)
	}
	p.addresses[i] = newAddressVow()
}

func (p *WriterProxy) vowFor(idx format.ClusterIdx) *addressVow {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.addresses[idx]
}

func (p *WriterProxy) fail(err error) {
	p.mu.Lock()
	if p.writerErr == nil {
		p.writerErr = err
	}
	p.mu.Unlock()
}

// runCompressor is a ClusterCompressor: it drains the dispatch channel,
// compresses each cluster's accumulated bytes in one shot, builds the
// cluster's tail inline, and forwards the finished body on the fusion
// channel for the ClusterWriter goroutine to append.
func (p *WriterProxy) runCompressor() {
	defer p.workers.Done()

	for creator := range p.dispatch {
		codec, err := compress.CreateCodec(creator.compression)
		if err != nil {
			p.fail(err)
			creator.Release()
			<-p.inFlight

			continue
		}

		compressed, err := codec.Compress(creator.Data())
		if err != nil {
			p.fail(errs.NewOther(err, "cluster compression failed"))
			creator.Release()
			<-p.inFlight

			continue
		}

		tail := creator.buildTail(source.Size(len(compressed)))
		creator.Release()
		p.fusion <- writeTask{idx: creator.idx, compressed: compressed, tail: tail}
		<-p.inFlight
	}
}

// runWriter is the ClusterWriter: the sole goroutine appending to out. For
// an uncompressed task it streams the cluster's own buffer; for a
// compressed task it appends the already-produced buffer. Either way it
// then appends the cluster's tail and fulfils that cluster's late-bound
// address.
func (p *WriterProxy) runWriter(out io.Writer) {
	defer close(p.writerDone)

	var pos int64
	for task := range p.fusion {
		var tail Tail

		if task.raw != nil {
			data := task.raw.Data()
			n, err := out.Write(data)
			if err != nil {
				p.fail(errs.NewIo(err, "cluster writer: failed writing uncompressed body"))
				task.raw.Release()

				continue
			}
			pos += int64(n)
			tail = task.raw.buildTail(source.Size(n))
			task.raw.Release()
		} else {
			n, err := out.Write(task.compressed)
			if err != nil {
				p.fail(errs.NewIo(err, "cluster writer: failed writing compressed body"))

				continue
			}
			pos += int64(n)
			tail = task.tail
		}

		tailBuf := tail.AppendBlock(nil)
		tailOffset := pos
		if _, err := out.Write(tailBuf); err != nil {
			p.fail(errs.NewIo(err, "cluster writer: failed writing tail"))

			continue
		}
		pos += int64(len(tailBuf))

		addr := pack.NewSizedOffset(source.Offset(tailOffset), source.Size(len(tailBuf)))
		p.vowFor(task.idx).Fulfill(addr)
	}
}
