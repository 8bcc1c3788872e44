// Package format defines the small closed enumerations shared across every
// Jubako pack kind: the kind tag carried in a pack's magic number and the
// compression identifiers usable by a cluster.
package format

// PackKind identifies the kind of pack a file or pack-region holds, encoded
// as the fourth byte of the 4-byte pack magic ("jbk" + kind byte).
type PackKind uint8

const (
	PackKindManifest  PackKind = 'm'
	PackKindDirectory PackKind = 'd'
	PackKindContent   PackKind = 'c'
	PackKindContainer PackKind = 'C'
)

// String returns the human-readable pack kind name.
func (k PackKind) String() string {
	switch k {
	case PackKindManifest:
		return "Manifest"
	case PackKindDirectory:
		return "Directory"
	case PackKindContent:
		return "Content"
	case PackKindContainer:
		return "Container"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the four defined pack kinds.
func (k PackKind) Valid() bool {
	switch k {
	case PackKindManifest, PackKindDirectory, PackKindContent, PackKindContainer:
		return true
	default:
		return false
	}
}

// CompressionType identifies the cluster-body compression codec, per spec §6.3.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionLz4  CompressionType = 1
	CompressionLzma CompressionType = 2
	CompressionZstd CompressionType = 3
)

// String returns the human-readable compression type name.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLz4:
		return "Lz4"
	case CompressionLzma:
		return "Lzma"
	case CompressionZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the four defined compression types.
func (c CompressionType) Valid() bool {
	switch c {
	case CompressionNone, CompressionLz4, CompressionLzma, CompressionZstd:
		return true
	default:
		return false
	}
}

// CheckKind identifies the pack-level integrity check stored in a CheckInfo
// record: either no check at all, or a whole-pack BLAKE3 digest.
type CheckKind uint8

const (
	CheckKindNone   CheckKind = 0
	CheckKindBlake3 CheckKind = 1
)

func (k CheckKind) String() string {
	switch k {
	case CheckKindNone:
		return "None"
	case CheckKindBlake3:
		return "Blake3"
	default:
		return "Unknown"
	}
}

// ValueIdx indexes a value within a value store's free-data area, e.g. the
// PackInfo.FreeDataId field of a Manifest pack.
type ValueIdx uint16
