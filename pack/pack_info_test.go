package pack

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

func TestPackInfoRoundTrip(t *testing.T) {
	info := PackInfo{
		UUID:         uuid.New(),
		PackSize:     1 << 20,
		CheckInfoPos: NewSizedOffset(64, 32),
		PackId:       2,
		PackKind:     format.PackKindContent,
		PackGroup:    1,
		FreeDataId:   format.ValueIdx(7),
		PackLocation: []byte("packs/content-2.jbk"),
	}

	block := info.AppendBlock(nil)
	require.Len(t, block, PackInfoFieldsSize+4)

	src := source.NewMemorySource(block)
	r := source.NewReaderToEnd(src, 0)

	got, err := ParsePackInfoAt(r, 0)
	require.NoError(t, err)
	require.Equal(t, info, got)
}

func TestPackInfoEmptyPackLocation(t *testing.T) {
	info := PackInfo{
		UUID:     uuid.New(),
		PackKind: format.PackKindDirectory,
	}
	buf := info.Bytes()
	got, err := parsePackInfo(buf)
	require.NoError(t, err)
	require.Empty(t, got.PackLocation)
}

func TestPackInfoOversizedLocationPanics(t *testing.T) {
	info := PackInfo{PackLocation: make([]byte, packLocationMaxLen+1)}
	require.Panics(t, func() { info.Bytes() })
}

func TestManifestSafeZonesEditableWithoutInvalidatingDigest(t *testing.T) {
	const arrayBase = source.Offset(100)
	zones := ManifestSafeZones(arrayBase, 2)
	require.Len(t, zones, 2)
	require.Equal(t, int64(arrayBase)+packInfoSafeZoneStart, zones[0].Start)
	require.Equal(t, int64(arrayBase)+int64(PackInfoFieldsSize), zones[0].End)
	require.Equal(t, int64(arrayBase)+int64(PackInfoFieldsSize+4)+packInfoSafeZoneStart, zones[1].Start)
}
