package directory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/entry"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

// buildPack runs a Creator through a value store, an entry store, and an
// index over it, finalizes it into an in-memory file, and returns the
// finalized bytes alongside the PackHeader Finalize reported.
func buildPack(t *testing.T) ([]byte, pack.PackHeader) {
	t.Helper()

	f := &memFile{}
	c := NewCreator(f, 7, pack.VendorId{'j', 'b', 'k', 0}, [24]byte{})

	vc := valuestore.NewPlainValueStoreCreator(0)
	ref, err := vc.AddValue([]byte("hello"))
	require.NoError(t, err)
	_, err = c.AddValueStore(vc)
	require.NoError(t, err)

	schema := &entry.UnsignedIntSchema{}
	props := []*entry.PropertyDef{{Kind: entry.KindUnsignedInt, UnsignedInt: schema}}
	ec := entry.NewEntryStoreCreator(0, props)
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, ec.AddEntry([]any{i * 2}))
	}
	_, err = c.AddEntryStore(ec)
	require.NoError(t, err)

	_, err = c.AddIndex("by-value", 0, 0, 5, 0, format.ContentAddress{})
	require.NoError(t, err)

	header, err := c.Finalize(&liveMemSource{f: f})
	require.NoError(t, err)

	_ = ref.Resolve()

	return f.Bytes(), header
}

func TestCreatorFinalizeAndOpenRoundTrip(t *testing.T) {
	data, header := buildPack(t)

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	dp, err := Open(r)
	require.NoError(t, err)

	require.Equal(t, format.PackKindDirectory, dp.Kind())
	require.Equal(t, header.UUID, dp.UUID())
	require.Equal(t, 1, dp.ValueStoreCount())
	require.Equal(t, 1, dp.EntryStoreCount())
	require.Equal(t, 1, dp.IndexCount())

	ok, err := dp.Check(src)
	require.NoError(t, err)
	require.True(t, ok)

	store, err := dp.GetEntryStore(0)
	require.NoError(t, err)
	require.Equal(t, 5, store.EntryCount())

	buf, variant, err := store.GetEntry(3)
	require.NoError(t, err)
	val, err := entry.CreateValue(variant.Properties[0], buf)
	require.NoError(t, err)
	require.Equal(t, uint64(6), val.Uint)

	vs, err := dp.GetValueStore(0)
	require.NoError(t, err)
	plain, ok := vs.(*valuestore.PlainValueStore)
	require.True(t, ok)
	got, err := plain.GetData(1, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	idx, err := dp.GetIndexByName("by-value")
	require.NoError(t, err)
	require.Equal(t, uint32(5), idx.EntryCount())

	finder := idx.GetFinder()
	e, err := finder.GetEntry(2)
	require.NoError(t, err)
	require.NotNil(t, e)

	_, err = dp.GetIndexByName("nope")
	require.Error(t, err)

	_, err = dp.GetEntryStore(1)
	require.Error(t, err)

	_, err = dp.GetValueStore(1)
	require.Error(t, err)

	_, err = dp.GetIndex(1)
	require.Error(t, err)
}
