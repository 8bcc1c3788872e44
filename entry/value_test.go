package entry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
	"github.com/arloliu/jubako/valuestore"
)

func TestCreateValueUnsignedInt(t *testing.T) {
	record := []byte{0x00, 0xFF, 0x01, 0x02, 0x03}
	p := Property{Offset: 1, Size: 4, Kind: KindUnsignedInt}

	v, err := CreateValue(p, record)
	require.NoError(t, err)
	require.Equal(t, ValueU32, v.Kind)
	require.Equal(t, uint64(0x030201FF), v.Uint)
}

func TestCreateValueSignedInt(t *testing.T) {
	record := []byte{0xFF}
	p := Property{Offset: 0, Size: 1, Kind: KindSignedInt}

	v, err := CreateValue(p, record)
	require.NoError(t, err)
	require.Equal(t, ValueI8, v.Kind)
	require.Equal(t, int64(-1), v.Int)
}

func TestCreateValueContentAddressNoChain(t *testing.T) {
	record := []byte{0x02, 0x01, 0x00, 0x00}
	p := Property{Offset: 0, Size: 4, Kind: KindContentAddress, NBase: 0}

	v, err := CreateValue(p, record)
	require.NoError(t, err)
	require.Equal(t, ValueContent, v.Kind)
	require.Equal(t, format.PackId(0x02), v.Content.Address.PackId)
	require.Equal(t, format.ContentIdx(1), v.Content.Address.ContentId)
	require.Nil(t, v.Content.Base)
}

func TestCreateValueContentAddressChain(t *testing.T) {
	record := []byte{
		0x01, 0x02, 0x00, 0x00, // primary: pack 1, content 2
		0x03, 0x04, 0x00, 0x00, // patch link 1: pack 3, content 4
	}
	p := Property{Offset: 0, Size: 8, Kind: KindContentAddress, NBase: 1}

	v, err := CreateValue(p, record)
	require.NoError(t, err)
	require.Equal(t, format.PackId(1), v.Content.Address.PackId)
	require.Equal(t, format.ContentIdx(2), v.Content.Address.ContentId)
	require.NotNil(t, v.Content.Base)
	require.Equal(t, format.PackId(3), v.Content.Base.Address.PackId)
	require.Equal(t, format.ContentIdx(4), v.Content.Base.Address.ContentId)
	require.Nil(t, v.Content.Base.Base)
}

func TestCreateValueArrayInline(t *testing.T) {
	record := []byte{0xAA, 0xBB, 0xCC}
	p := Property{Offset: 0, Size: 3, Kind: KindArray}

	v, err := CreateValue(p, record)
	require.NoError(t, err)
	require.Equal(t, ValueArray, v.Kind)
	require.False(t, v.Array.Deported)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, v.Array.Base)
}

func TestCreateValueVLArrayDeported(t *testing.T) {
	record := []byte{0x02, 0xFF, 0xEE} // value id 2, base [0xFF, 0xEE]
	p := Property{Offset: 0, Size: 1, Kind: KindVLArray, StoreIdx: 3, BaseLen: 2}

	v, err := CreateValue(p, record)
	require.NoError(t, err)
	require.Equal(t, ValueArray, v.Kind)
	require.True(t, v.Array.Deported)
	require.Equal(t, format.ValueStoreIdx(3), v.Array.StoreIdx)
	require.Equal(t, uint64(2), v.Array.ValueID)
	require.Equal(t, []byte{0xFF, 0xEE}, v.Array.Base)
}

// TestArrayValueBytesResolvesDeportedTail resolves a deported ArrayValue
// against a genuine *valuestore.IndexedValueStore parsed from a one-value
// fixture block, matching the byte layout valuestore/store_test.go's
// TestParseIndexedValueStoreFixture exercises for the plain reader side.
func TestArrayValueBytesResolvesDeportedTail(t *testing.T) {
	fixture := []byte{
		0x11, 0x22, 0x33, // value 0
		0xF3, 0xDA, 0x7D, 0xC8, // data CRC
		0x01,                                           // kind: Indexed
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // value count
		0x01,                   // offset_size
		0x03,                   // data_size
		0x2D, 0x1F, 0x44, 0x0F, // tail CRC
	}

	src := source.NewMemorySource(fixture)
	r := source.NewReaderToEnd(src, 0)

	vs, err := valuestore.ParseAt(r, pack.SizedOffset{Offset: 7, Size: 11})
	require.NoError(t, err)

	av := ArrayValue{Base: []byte{0xAA}, Deported: true, StoreIdx: 0, ValueID: 0}
	resolver := func(idx format.ValueStoreIdx) (valuestore.ValueStore, error) {
		require.Equal(t, format.ValueStoreIdx(0), idx)

		return vs, nil
	}

	got, err := av.Bytes(resolver)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x11, 0x22, 0x33}, got)
}
