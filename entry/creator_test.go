package entry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

// TestEntryStoreCreatorRoundTrip writes an EntryStoreCreator holding two
// properties — a varying UnsignedInt and a deported Array — through
// AppendBlock, alongside its backing IndexedValueStoreCreator, then reads
// both back and confirms every entry resolves to its original value.
func TestEntryStoreCreatorRoundTrip(t *testing.T) {
	store := valuestore.NewIndexedValueStoreCreator(0)
	arraySchema := NewArraySchema(1, store)
	unsignedSchema := &UnsignedIntSchema{}

	props := []*PropertyDef{
		{Kind: KindUnsignedInt, UnsignedInt: unsignedSchema},
		{Kind: KindVLArray, Array: arraySchema},
	}
	creator := NewEntryStoreCreator(0, props)

	require.NoError(t, creator.AddEntry([]any{uint64(10), []byte{0xAA, 0xBB, 0xCC}}))
	require.NoError(t, creator.AddEntry([]any{uint64(20), []byte{0xDD, 0xEE}}))

	var buf bytes.Buffer
	valuePtr, err := valuestore.AppendBlock(&buf, int64(buf.Len()), store)
	require.NoError(t, err)
	entryPtr, err := creator.AppendBlock(&buf, int64(buf.Len()))
	require.NoError(t, err)

	src := source.NewMemorySource(buf.Bytes())
	r := source.NewReaderToEnd(src, 0)

	vs, err := valuestore.ParseAt(r, valuePtr)
	require.NoError(t, err)

	es, err := ParseEntryStore(r, entryPtr)
	require.NoError(t, err)
	require.Equal(t, 2, es.EntryCount())
	require.False(t, es.Layout().HasVariantID())

	resolver := func(idx format.ValueStoreIdx) (valuestore.ValueStore, error) {
		require.Equal(t, format.ValueStoreIdx(0), idx)

		return vs, nil
	}

	record, variant, err := es.GetEntry(0)
	require.NoError(t, err)
	unsignedVal, err := CreateValue(variant.Properties[0], record)
	require.NoError(t, err)
	require.Equal(t, uint64(10), unsignedVal.Uint)

	arrayVal, err := CreateValue(variant.Properties[1], record)
	require.NoError(t, err)
	got, err := arrayVal.Array.Bytes(resolver)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, got)

	record, variant, err = es.GetEntry(1)
	require.NoError(t, err)
	unsignedVal, err = CreateValue(variant.Properties[0], record)
	require.NoError(t, err)
	require.Equal(t, uint64(20), unsignedVal.Uint)

	arrayVal, err = CreateValue(variant.Properties[1], record)
	require.NoError(t, err)
	got, err = arrayVal.Array.Bytes(resolver)
	require.NoError(t, err)
	require.Equal(t, []byte{0xDD, 0xEE}, got)
}

// TestEntryStoreCreatorDropsUniformProperty confirms a property holding the
// same value across every entry is promoted to a zero-byte default and
// dropped from the resolved Layout entirely, while a varying property
// alongside it still renders.
func TestEntryStoreCreatorDropsUniformProperty(t *testing.T) {
	uniform := &UnsignedIntSchema{}
	varying := &UnsignedIntSchema{}
	props := []*PropertyDef{
		{Kind: KindUnsignedInt, UnsignedInt: uniform},
		{Kind: KindUnsignedInt, UnsignedInt: varying},
	}
	creator := NewEntryStoreCreator(0, props)

	require.NoError(t, creator.AddEntry([]any{uint64(7), uint64(10)}))
	require.NoError(t, creator.AddEntry([]any{uint64(7), uint64(20)}))

	layout, records, err := creator.Finalize()
	require.NoError(t, err)
	require.Len(t, layout.Variants[0].Properties, 1)
	require.Equal(t, 1, layout.EntrySize)
	require.Len(t, records, 2)
	require.Equal(t, byte(10), records[0])
	require.Equal(t, byte(20), records[1])
}

// TestEntryStoreCreatorAddEntryRejectsWrongType confirms AddEntry validates
// each value's dynamic type against its property's declared Kind.
func TestEntryStoreCreatorAddEntryRejectsWrongType(t *testing.T) {
	schema := &UnsignedIntSchema{}
	props := []*PropertyDef{{Kind: KindUnsignedInt, UnsignedInt: schema}}
	creator := NewEntryStoreCreator(0, props)

	err := creator.AddEntry([]any{"not a uint64"})
	require.Error(t, err)
}

// TestEntryStoreCreatorAddEntryRejectsWrongCount confirms AddEntry checks
// the number of supplied values against the declared property count.
func TestEntryStoreCreatorAddEntryRejectsWrongCount(t *testing.T) {
	schema := &UnsignedIntSchema{}
	props := []*PropertyDef{{Kind: KindUnsignedInt, UnsignedInt: schema}}
	creator := NewEntryStoreCreator(0, props)

	err := creator.AddEntry([]any{uint64(1), uint64(2)})
	require.Error(t, err)
}
