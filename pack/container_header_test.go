package pack

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/source"
)

func TestContainerPackHeaderRoundTrip(t *testing.T) {
	h := ContainerPackHeader{
		PackLocatorsPos: 4096,
		PackCount:       7,
	}
	h.FreeData[0] = 0x01

	block := h.AppendBlock(nil)
	require.Len(t, block, ContainerHeaderFieldsSize+4)

	src := source.NewMemorySource(block)
	r := source.NewReaderToEnd(src, 0)

	got, err := ParseContainerPackHeaderAt(r, 0)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestPackLocatorRoundTrip(t *testing.T) {
	loc := PackLocator{
		UUID:     uuid.New(),
		PackSize: 9000,
		PackPos:  128,
	}

	buf := loc.Bytes()
	require.Len(t, buf, PackLocatorFieldsSize)

	got, err := ParsePackLocator(buf)
	require.NoError(t, err)
	require.Equal(t, loc, got)
}

func TestReadPackLocatorTable(t *testing.T) {
	locs := []PackLocator{
		{UUID: uuid.New(), PackSize: 10, PackPos: 0},
		{UUID: uuid.New(), PackSize: 20, PackPos: 10},
		{UUID: uuid.New(), PackSize: 30, PackPos: 30},
	}

	var buf []byte
	for _, l := range locs {
		buf = append(buf, l.Bytes()...)
	}

	src := source.NewMemorySource(buf)
	r := source.NewReaderToEnd(src, 0)

	got, err := ReadPackLocatorTable(r, 0, len(locs))
	require.NoError(t, err)
	require.Equal(t, locs, got)
}
