package pack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/source"
)

func TestDirectoryPackHeaderRoundTrip(t *testing.T) {
	h := DirectoryPackHeader{
		IndexPtrPos:      128,
		EntryStorePtrPos: 256,
		ValueStorePtrPos: 384,
		IndexCount:       5,
		EntryStoreCount:  2,
		ValueStoreCount:  1,
	}
	h.FreeData[3] = 0xCD

	block := h.AppendBlock(nil)
	require.Len(t, block, DirectoryHeaderFieldsSize+4)

	src := source.NewMemorySource(block)
	r := source.NewReaderToEnd(src, 0)

	got, err := ParseDirectoryPackHeaderAt(r, 0)
	require.NoError(t, err)
	require.Equal(t, h, got)
}
