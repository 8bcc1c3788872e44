package cluster

import "github.com/arloliu/jubako/pack"

// addressVow is the late-bound cell a cluster's final on-disk SizedOffset
// is recorded into ("Vow/Bound" in the terminology this pipeline is
// modelled on): the slot is created when the client assigns a ClusterIdx
// to a not-yet-written cluster, and fulfilled exactly once, by the
// WriterProxy's writer goroutine right after it has written that cluster's
// bytes and tail to the output. A buffered channel
// of capacity 1 is sufficient: fulfilling is a single send, waiting is a
// single receive that blocks until it happens.
type addressVow struct {
	ch chan pack.SizedOffset
}

func newAddressVow() *addressVow {
	return &addressVow{ch: make(chan pack.SizedOffset, 1)}
}

// Fulfill records v as the cluster's final address. Must be called exactly
// once.
func (a *addressVow) Fulfill(v pack.SizedOffset) {
	a.ch <- v
}

// Wait blocks until Fulfill has been called, then returns the recorded
// value.
func (a *addressVow) Wait() pack.SizedOffset {
	return <-a.ch
}
