// Package valuestore implements a Directory pack's value stores: the
// deduplicated byte pools that an entry's variable-size property values
// (strings, arrays) are stored in, addressed by a small key instead of being
// repeated inline in every entry.
//
// Two kinds share the wire protocol's data-block shape (a CRC-32C-checked
// byte blob followed by a CRC-32C-checked tail) but differ in how a key
// resolves to bytes:
//
//   - PlainValueStore concatenates each distinct value as a 1-byte length
//     prefix followed by its bytes; a key is the byte offset of the entry's
//     length-prefix, and a caller must always supply the size to read.
//   - IndexedValueStore concatenates raw bytes with no per-entry framing; a
//     key is a position into an offsets table carried in the tail, and the
//     size can be derived from consecutive offsets when not given.
//
// On the write side, Creator deduplicates values as they're added: an
// identical byte string added twice resolves to the same key. Because
// inserting a new value before an existing one's position can shift that
// existing value's key (IndexedValueStore) or its byte offset
// (PlainValueStore), AddValue returns a ValueRef rather than a concrete key;
// the ref only settles to its final value once every AddValue call for the
// store has completed.
package valuestore
