package format

// The engine addresses nine distinct index spaces (packs, contents,
// clusters, blobs, entries, entry stores, value stores, indexes,
// properties/variants). Each gets its own newtype so a caller can never
// pass a ClusterIdx where a BlobIdx is expected, even though both are
// plain integers on the wire.

// PackId identifies one pack catalogued by a Manifest pack.
type PackId uint16

// ContentIdx indexes a ContentPack's content_ptr table.
type ContentIdx uint32

// ClusterIdx indexes a ContentPack's cluster_ptr table.
type ClusterIdx uint32

// BlobIdx indexes a blob within a single Cluster.
type BlobIdx uint16

// EntryIdx indexes an entry within an EntryStore.
type EntryIdx uint32

// EntryStoreIdx indexes a Directory pack's entry_store_ptr table.
type EntryStoreIdx uint32

// ValueStoreIdx indexes a Directory pack's value_store_ptr table.
type ValueStoreIdx uint8

// IndexIdx indexes a Directory pack's index_ptr table.
type IndexIdx uint32

// PropertyIdx indexes a Layout's property list.
type PropertyIdx uint16

// VariantIdx indexes a Layout's variant list.
type VariantIdx uint8
