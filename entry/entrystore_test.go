package entry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// TestParseEntryStoreFixture parses a hand-built single-variant, single-u8
// property EntryStore holding two one-byte entries, hand-traced the same way
// valuestore/store_test.go's fixtures are.
func TestParseEntryStoreFixture(t *testing.T) {
	data := []byte{
		0x07, // entry 0
		0x09, // entry 1
		0xA3, 0xD5, 0x96, 0xE7, // data CRC
		0x00,       // kind: Plain
		0x01, 0x00, // entry_size = 1
		0x01,       // variant_count
		0x01,       // property_count
		0b0010_0000, // raw property: u8
		0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // data_size
		0x99, 0x62, 0x85, 0x13, // tail CRC
	}

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	store, err := ParseEntryStore(r, pack.SizedOffset{Offset: 6, Size: 14})
	require.NoError(t, err)

	require.Equal(t, 1, len(store.Layout().Variants))
	require.False(t, store.Layout().HasVariantID())
	require.Equal(t, 2, store.EntryCount())

	want := []Property{{Offset: 0, Size: 1, Kind: KindUnsignedInt}}
	require.Equal(t, want, store.Layout().Variants[0].Properties)

	buf, variant, err := store.GetEntry(0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x07}, buf)
	require.Equal(t, want, variant.Properties)

	buf, _, err = store.GetEntry(1)
	require.NoError(t, err)
	require.Equal(t, []byte{0x09}, buf)

	_, _, err = store.GetEntry(2)
	require.Error(t, err)
}

func TestDecodeEntryStoreTailRejectsUnsupportedKind(t *testing.T) {
	_, err := decodeEntryStoreTail([]byte{0x01, 0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestDecodeEntryStoreTailRejectsVariantCountMismatch(t *testing.T) {
	buf := []byte{
		0x00,       // kind: Plain
		0x01, 0x00, // entry_size = 1
		0x02, // variant_count (wrong: layout only resolves 1)
		0x01, // property_count
		0b0010_0000,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	_, err := decodeEntryStoreTail(buf)
	require.Error(t, err)
}

func TestEntryStoreGetEntrySelectsVariantByID(t *testing.T) {
	layout, err := BuildLayout([]RawProperty{
		{Kind: RawKindVariantId, Size: 1},
		{Kind: RawKindUnsignedInt, Size: 1},

		{Kind: RawKindVariantId, Size: 1},
		{Kind: RawKindSignedInt, Size: 1},
	}, 2)
	require.NoError(t, err)
	require.True(t, layout.HasVariantID())

	data := []byte{
		0x00, 0x2A, // variant 0: unsigned 0x2A
		0x01, 0xFF, // variant 1: signed -1
	}

	store := &EntryStore{layout: layout, r: source.NewReaderToEnd(source.NewMemorySource(data), 0)}
	require.Equal(t, 2, store.EntryCount())

	_, variant, err := store.GetEntry(0)
	require.NoError(t, err)
	require.Equal(t, KindUnsignedInt, variant.Properties[0].Kind)

	_, variant, err = store.GetEntry(1)
	require.NoError(t, err)
	require.Equal(t, KindSignedInt, variant.Properties[0].Kind)
}
