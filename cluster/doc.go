// Package cluster implements the compression/blob-addressing engine a
// Content pack's body is built from: a Cluster is a compressed or raw run
// of concatenated blobs terminated by a tail describing each blob's
// boundary. Cluster decodes its data lazily on first blob fetch;
// ClusterCreator and WriterProxy (with its compressor and writer
// goroutines) implement the writer-side parallel compression pipeline that
// assembles new clusters from a stream of input blobs.
package cluster
