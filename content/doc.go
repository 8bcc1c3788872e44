// Package content implements the Content pack: a self-describing container
// whose body is a sequence of clusters (see package cluster) and whose
// header carries a content_ptr table resolving a ContentIdx to the
// (ClusterIdx, BlobIdx) pair that locates its bytes. ContentPack is the
// read-side view; Creator is the write-side builder that routes
// incoming blobs through cluster.WriterProxy's parallel compression
// pipeline.
package content
