package content

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

func TestContentInfoPacking(t *testing.T) {
	info := ContentInfo{ClusterIdx: 0x123, BlobIdx: 0xABC}
	packed := info.pack()
	require.Equal(t, uint32(0x123ABC), packed)
	require.Equal(t, info, parseContentInfo(packed))
}

func TestContentInfoRoundTripTable(t *testing.T) {
	infos := []ContentInfo{
		{ClusterIdx: 0, BlobIdx: 0},
		{ClusterIdx: 5, BlobIdx: 4095},
		{ClusterIdx: format.ClusterIdx(1 << 19), BlobIdx: 1},
	}

	var buf []byte
	for _, info := range infos {
		buf = info.AppendTo(buf)
	}
	require.Len(t, buf, ContentInfoSize*len(infos))

	got, err := readContentInfoTable(source.NewReaderToEnd(source.NewMemorySource(buf), 0), 0, len(infos))
	require.NoError(t, err)
	require.Equal(t, infos, got)
}
