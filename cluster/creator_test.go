package cluster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

func sizesToUint64(sizes []source.Size) []uint64 {
	out := make([]uint64, len(sizes))
	for i, s := range sizes {
		out[i] = uint64(s)
	}

	return out
}

func TestClusterCreatorAddBlob(t *testing.T) {
	c := NewClusterCreator(0, format.CompressionNone)
	defer c.Release()

	require.True(t, c.IsEmpty())

	idx0, err := c.AddBlob(bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	require.Equal(t, format.BlobIdx(0), idx0)

	idx1, err := c.AddBlob(bytes.NewReader([]byte("world!")))
	require.NoError(t, err)
	require.Equal(t, format.BlobIdx(1), idx1)

	require.False(t, c.IsEmpty())
	require.Equal(t, 11, c.DataSize())
	require.Equal(t, []byte("helloworld!"), c.Data())
}

func TestClusterCreatorIsFullByBlobCount(t *testing.T) {
	c := NewClusterCreator(0, format.CompressionNone)
	defer c.Release()

	for i := 0; i < MaxBlobsPerCluster; i++ {
		_, err := c.AddBlob(bytes.NewReader([]byte{byte(i)}))
		require.NoError(t, err)
	}

	require.True(t, c.IsFull(1))

	_, err := c.AddBlob(bytes.NewReader([]byte{0}))
	require.Error(t, err)
}

func TestClusterCreatorIsFullBySize(t *testing.T) {
	c := NewClusterCreator(0, format.CompressionNone)
	defer c.Release()

	require.False(t, c.IsFull(MaxClusterSize+1), "an empty cluster is never full regardless of the next blob's size")

	_, err := c.AddBlob(bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.True(t, c.IsFull(MaxClusterSize))
	require.False(t, c.IsFull(10))
}

func TestClusterCreatorBuildTail(t *testing.T) {
	c := NewClusterCreator(3, format.CompressionNone)
	defer c.Release()

	_, err := c.AddBlob(bytes.NewReader([]byte("abc")))
	require.NoError(t, err)
	_, err = c.AddBlob(bytes.NewReader([]byte("de")))
	require.NoError(t, err)

	tail := c.buildTail(5)
	require.Equal(t, format.CompressionNone, tail.Compression)
	require.Equal(t, 2, tail.BlobCount())
	require.Equal(t, []uint64{0, 3, 5}, sizesToUint64(tail.Offsets))
}
