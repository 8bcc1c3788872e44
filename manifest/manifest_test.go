package manifest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

func buildManifest(t *testing.T) ([]byte, pack.PackHeader, PackEntry, PackEntry) {
	t.Helper()

	dirEntry := PackEntry{
		UUID:      uuid.New(),
		PackId:    0,
		PackKind:  format.PackKindDirectory,
		PackGroup: 0,
		PackSize:  1234,
		CheckInfo: pack.CheckInfo{Kind: format.CheckKindBlake3, Hash: [32]byte{1, 2, 3}},
		FreeData:  []byte("dir-free-data"),
		Locator:   []byte("directory.jbkd"),
	}
	contentEntry := PackEntry{
		UUID:      uuid.New(),
		PackId:    1,
		PackKind:  format.PackKindContent,
		PackGroup: 0,
		PackSize:  5678,
		CheckInfo: pack.CheckInfo{Kind: format.CheckKindBlake3, Hash: [32]byte{4, 5, 6}},
		FreeData:  []byte("content-free-data"),
		Locator:   []byte("content.jbkc"),
	}

	f := &memFile{}
	c := NewCreator(pack.VendorId{'j', 'b', 'k', 0}, [50]byte{})
	c.AddPack(dirEntry)
	c.AddPack(contentEntry)

	header, err := c.Finalize(f, &liveMemSource{f: f})
	require.NoError(t, err)

	return f.Bytes(), header, dirEntry, contentEntry
}

func TestCreatorFinalizeAndOpenRoundTrip(t *testing.T) {
	data, header, dirEntry, contentEntry := buildManifest(t)

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	mp, err := Open(r)
	require.NoError(t, err)

	require.Equal(t, format.PackKindManifest, mp.Kind())
	require.Equal(t, header.UUID, mp.UUID())
	require.Equal(t, 2, mp.PackCount())
	require.Equal(t, uint16(1), mp.MaxPackId())

	require.Equal(t, dirEntry.UUID, mp.DirectoryPackInfo().UUID)
	require.Equal(t, dirEntry.PackSize, mp.DirectoryPackInfo().PackSize)

	ci, err := mp.GetContentPackInfo(1)
	require.NoError(t, err)
	require.Equal(t, contentEntry.UUID, ci.UUID)
	require.Equal(t, contentEntry.PackSize, ci.PackSize)

	pi, err := mp.GetPackInfoByUUID(contentEntry.UUID)
	require.NoError(t, err)
	require.Equal(t, ci, pi)

	gotCheck, err := mp.GetPackCheckInfo(contentEntry.UUID)
	require.NoError(t, err)
	require.Equal(t, contentEntry.CheckInfo, gotCheck)

	gotCheck, err = mp.GetPackCheckInfo(dirEntry.UUID)
	require.NoError(t, err)
	require.Equal(t, dirEntry.CheckInfo, gotCheck)

	freeData, err := mp.GetPackFreeData(0)
	require.NoError(t, err)
	require.Equal(t, dirEntry.FreeData, freeData)

	freeData, err = mp.GetPackFreeData(1)
	require.NoError(t, err)
	require.Equal(t, contentEntry.FreeData, freeData)

	ok, err := mp.Check(src)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = mp.GetContentPackInfo(99)
	require.Error(t, err)

	_, err = mp.GetPackInfoByUUID(uuid.New())
	require.Error(t, err)
}

// TestCheckSurvivesLocatorRewrite confirms that rewriting a catalogued
// pack's pack_location bytes in place does not invalidate the Manifest
// pack's own whole-body digest, since those bytes lie inside the record's
// safe zone that the digest skips. The record's own CRC-32C still covers
// them, so reopening the mutated bytes fails while Check over them passes.
func TestCheckSurvivesLocatorRewrite(t *testing.T) {
	data, _, _, _ := buildManifest(t)

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)
	mp, err := Open(r)
	require.NoError(t, err)

	ci, err := mp.GetContentPackInfo(1)
	require.NoError(t, err)
	require.NotEmpty(t, ci.PackLocation)

	mutated := make([]byte, len(data))
	copy(mutated, data)

	// 39 = packInfoSafeZoneStart(38) + 1, skipping the pack_location length
	// byte.
	locSlotStart := int(mp.packsArrayBase) + 1*packInfoSlotSize + 39
	for i := locSlotStart; i < locSlotStart+len(ci.PackLocation) && i < len(mutated); i++ {
		mutated[i] ^= 0xff
	}

	mutatedSrc := source.NewMemorySource(mutated)
	mutatedR := source.NewReaderToEnd(mutatedSrc, 0)
	_, err = Open(mutatedR)
	require.Error(t, err)

	ok, err := mp.Check(mutatedSrc)
	require.NoError(t, err)
	require.True(t, ok)
}
