// Package jubako provides a content-addressable container format: many
// immutable, compressed blobs (Content packs), a schema-driven entry
// catalog with range-searchable indexes (a Directory pack), and a
// manifest tying every pack together by BLAKE3 checksum (a Manifest
// pack), optionally bundled into one file (a Container pack).
//
// # Core Features
//
//   - Content-addressed blob storage, clustered and compressed per group
//   - Schema-driven entry catalog with variant-typed properties
//   - Range-searchable indexes over entry properties
//   - CRC-32C block framing and BLAKE3 whole-pack integrity checks
//   - Pluggable pack resolution: bundled in one Container file, or spread
//     across a directory and resolved through a locator chain
//
// # Basic Usage
//
// Opening a container and reading content:
//
//	import "github.com/arloliu/jubako"
//
//	c, err := jubako.Open("/data/release.jbkm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := c.GetBytes(addr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if r == nil {
//	    // addr's pack could not be located
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the
// container package, simplifying the most common use case of opening a
// container by file path. For advanced usage — custom locators, reading
// straight from a non-file source.Source, or building packs — use the
// container, locator, content, directory, manifest, and containerpack
// packages directly.
package jubako

import (
	"path/filepath"

	"github.com/arloliu/jubako/container"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/locator"
	"github.com/arloliu/jubako/source"
)

// Open opens the Jubako container (a Container pack or a bare Manifest
// pack) stored at path.
//
// If path holds a bare Manifest pack, sibling packs it catalogues are
// resolved relative to path's directory via a locator.Filesystem, the
// way a Manifest pack and its Directory/Content packs are typically
// shipped as a set of files in one directory. If path holds a Container
// pack, its bundled packs are resolved first and the directory locator
// only backs up packs the Container pack itself does not carry.
//
// Parameters:
//   - path: filesystem path to a Container pack or a Manifest pack.
//
// Returns:
//   - *container.Container: the opened container, ready for GetBytes/Check.
//   - error: an error if path cannot be opened or its leading pack is malformed.
func Open(path string) (*container.Container, error) {
	src, err := source.NewFileSource(path)
	if err != nil {
		return nil, err
	}

	fsLocator := locator.NewFilesystem(filepath.Dir(path))

	return container.Open(src, fsLocator)
}

// OpenSource opens a Jubako container from an already-open source.Source,
// resolving any pack it catalogues but does not itself bundle through
// extraLocators in order.
//
// Use this when the container's bytes come from somewhere other than a
// plain file — an in-memory buffer, a network-backed source.Source
// implementation, or a source.Source whose packs must be resolved
// through a custom locator.Locator rather than locator.Filesystem.
//
// Parameters:
//   - src: an open source.Source positioned at the start of a Container or Manifest pack.
//   - extraLocators: locators tried, in order, for any pack not resolved another way.
//
// Returns:
//   - *container.Container: the opened container, ready for GetBytes/Check.
//   - error: an error if src's leading pack is malformed or of an unsupported kind.
func OpenSource(src source.Source, extraLocators ...locator.Locator) (*container.Container, error) {
	return container.Open(src, extraLocators...)
}

// NewContentAddress parses a 4-byte content address (1-byte pack id,
// 3-byte little-endian content id) as stored in an entry's Variant
// fields back into a format.ContentAddress.
//
// Parameters:
//   - data: at least 4 bytes, as produced by (format.ContentAddress).AppendTo.
//
// Returns:
//   - format.ContentAddress: the parsed address.
func NewContentAddress(data []byte) format.ContentAddress {
	return format.ParseContentAddress(data)
}
