package entry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/source"
)

func singleVariantStore(t *testing.T) *EntryStore {
	t.Helper()

	layout, err := BuildLayout([]RawProperty{
		{Kind: RawKindUnsignedInt, Size: 1},
		{Kind: RawKindSignedInt, Size: 1},
	}, 2)
	require.NoError(t, err)

	data := []byte{0x2A, 0xFF}
	return &EntryStore{layout: layout, r: source.NewReaderToEnd(source.NewMemorySource(data), 0)}
}

func TestNewBuilderValidatesPropertyCount(t *testing.T) {
	store := singleVariantStore(t)

	b, err := NewBuilder(store.Layout(), 0, 2)
	require.NoError(t, err)
	require.NotNil(t, b)

	_, err = NewBuilder(store.Layout(), 0, 3)
	require.Error(t, err)

	_, err = NewBuilder(store.Layout(), 1, 2)
	require.Error(t, err)
}

func TestBuilderProperty(t *testing.T) {
	store := singleVariantStore(t)

	b, err := NewBuilder(store.Layout(), 0, 2)
	require.NoError(t, err)

	p, err := b.Property(0)
	require.NoError(t, err)
	require.Equal(t, KindUnsignedInt, p.Kind)

	p, err = b.Property(1)
	require.NoError(t, err)
	require.Equal(t, KindSignedInt, p.Kind)

	_, err = b.Property(2)
	require.Error(t, err)
}

func TestBuilderCreateEntry(t *testing.T) {
	store := singleVariantStore(t)

	b, err := NewBuilder(store.Layout(), 0, 2)
	require.NoError(t, err)

	values, err := b.CreateEntry(store, 0)
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, uint64(0x2A), values[0].Uint)
	require.Equal(t, int64(-1), values[1].Int)
}

func TestBuilderCreateEntryRejectsVariantMismatch(t *testing.T) {
	layout, err := BuildLayout([]RawProperty{
		{Kind: RawKindVariantId, Size: 1},
		{Kind: RawKindUnsignedInt, Size: 1},
		{Kind: RawKindPadding, Size: 1},

		{Kind: RawKindVariantId, Size: 1},
		{Kind: RawKindUnsignedInt, Size: 1},
		{Kind: RawKindSignedInt, Size: 1},
	}, 3)
	require.NoError(t, err)
	require.True(t, layout.HasVariantID())
	require.Len(t, layout.Variants[0].Properties, 1)
	require.Len(t, layout.Variants[1].Properties, 2)

	data := []byte{
		0x00, 0x2A, 0x00, // variant 0 entry
	}
	store := &EntryStore{layout: layout, r: source.NewReaderToEnd(source.NewMemorySource(data), 0)}

	b, err := NewBuilder(layout, 1, 2)
	require.NoError(t, err)

	_, err = b.CreateEntry(store, 0)
	require.Error(t, err)
}

func TestCreateAnyEntry(t *testing.T) {
	store := singleVariantStore(t)

	entry, err := store.CreateAnyEntry(0)
	require.NoError(t, err)
	require.Equal(t, 0, entry.VariantID)
	require.Len(t, entry.Values, 2)
	require.Equal(t, uint64(0x2A), entry.Values[0].Uint)
	require.Equal(t, int64(-1), entry.Values[1].Int)
}
