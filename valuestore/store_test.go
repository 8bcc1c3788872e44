package valuestore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

func TestParsePlainValueStoreFixture(t *testing.T) {
	data := []byte{
		0x11, 0x12, 0x13, 0x14, 0x15, // entry 0
		0x21, 0x22, 0x23, // entry 1
		0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, // entry 2
		0x0D, 0x0D, 0x73, 0xA0, // data CRC
		0x00,                                     // kind: Plain
		0x0F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // data_size
		0xE4, 0x65, 0xB6, 0xC7, // tail CRC
	}

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	vs, err := ParseAt(r, pack.SizedOffset{Offset: 19, Size: 9})
	require.NoError(t, err)
	require.Equal(t, KindPlain, vs.Kind())

	plain, ok := vs.(*PlainValueStore)
	require.True(t, ok)

	got, err := plain.GetData(0, 5)
	require.NoError(t, err)
	require.Equal(t, []byte{0x11, 0x12, 0x13, 0x14, 0x15}, got)

	got, err = plain.GetData(5, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{0x21, 0x22, 0x23}, got)

	got, err = plain.GetData(8, 7)
	require.NoError(t, err)
	require.Equal(t, []byte{0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37}, got)
}

func TestParseIndexedValueStoreFixture(t *testing.T) {
	data := []byte{
		0x11, 0x12, 0x13, 0x14, 0x15, // entry 0
		0x21, 0x22, 0x23, // entry 1
		0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, // entry 2
		0x0D, 0x0D, 0x73, 0xA0, // data CRC
		0x01,                                     // kind: Indexed
		0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // value count
		0x01, // offset_size
		0x0f, // data_size
		0x05, // offset of entry 1
		0x08, // offset of entry 2
		0x1E, 0x6E, 0xE7, 0xB7, // tail CRC
	}

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	vs, err := ParseAt(r, pack.SizedOffset{Offset: 19, Size: 13})
	require.NoError(t, err)
	require.Equal(t, KindIndexed, vs.Kind())

	indexed, ok := vs.(*IndexedValueStore)
	require.True(t, ok)
	require.Equal(t, []uint64{0, 5, 8, 15}, indexed.offsets)
	require.Equal(t, 3, indexed.ValueCount())

	got, err := indexed.GetData(0, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x11, 0x12, 0x13, 0x14, 0x15}, got)

	got, err = indexed.GetData(1, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x21, 0x22, 0x23}, got)

	got, err = indexed.GetData(2, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37}, got)

	size := uint64(2)
	got, err = indexed.GetData(2, &size)
	require.NoError(t, err)
	require.Equal(t, []byte{0x31, 0x32}, got)

	_, err = indexed.GetData(3, nil)
	require.Error(t, err)
}
