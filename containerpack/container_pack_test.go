package containerpack

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// buildFakePack assembles a minimal, self-contained pack byte stream: a
// PackHeader carrying magic and a body, closed with a CheckKindNone
// CheckInfo and the reversed-header footer every pack kind ends with. It
// exists only to give containerpack's tests something pack-shaped to bundle
// without depending on another pack package's own Creator.
func buildFakePack(t *testing.T, magic format.PackKind, body []byte) ([]byte, uuid.UUID) {
	t.Helper()

	id := uuid.New()
	checkInfoPos := int64(pack.HeaderBlockSize) + int64(len(body))
	checkInfo := pack.CheckInfo{Kind: format.CheckKindNone}
	fileSize := source.Size(checkInfoPos) + checkInfo.Size() + 4 + source.Size(pack.FooterSize)

	header := pack.NewPackHeader(magic, pack.VendorId{'j', 'b', 'k', 0}, id, fileSize, source.Offset(checkInfoPos))

	var out []byte
	out = append(out, header.AppendBlock(nil)...)
	out = append(out, body...)
	out = append(out, checkInfo.AppendTo(nil)...)
	out = append(out, pack.ReverseHeaderFooter(header.AppendBlock(nil))...)

	require.Len(t, out, int(fileSize))

	return out, id
}

func buildContainer(t *testing.T) ([]byte, uuid.UUID, uuid.UUID) {
	t.Helper()

	dirPack, dirID := buildFakePack(t, format.PackKindDirectory, []byte("directory-body"))
	manifestPack, manifestID := buildFakePack(t, format.PackKindManifest, []byte("manifest-body"))

	f := &memFile{}
	c, err := NewCreator(f, pack.VendorId{'j', 'b', 'k', 0}, [24]byte{})
	require.NoError(t, err)

	require.NoError(t, c.AddPack(dirID, bytes.NewReader(dirPack)))
	require.NoError(t, c.AddPack(manifestID, bytes.NewReader(manifestPack)))

	_, err = c.Finalize(&liveMemSource{f: f})
	require.NoError(t, err)

	return f.Bytes(), dirID, manifestID
}

func TestCreatorFinalizeAndOpenRoundTrip(t *testing.T) {
	data, dirID, manifestID := buildContainer(t)

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	cp, err := Open(r)
	require.NoError(t, err)

	require.Equal(t, format.PackKindContainer, cp.Kind())
	require.Equal(t, 2, cp.PackCount())

	gotID, err := cp.PackUUID(0)
	require.NoError(t, err)
	require.Equal(t, dirID, gotID)

	sub, ok := cp.GetPackReader(manifestID)
	require.True(t, ok)
	ph, err := pack.ParsePackHeaderAt(sub, 0)
	require.NoError(t, err)
	require.Equal(t, format.PackKindManifest, ph.Magic)

	manifestReader, err := cp.GetManifestPackReader()
	require.NoError(t, err)
	require.NotNil(t, manifestReader)
	ph2, err := pack.ParsePackHeaderAt(manifestReader, 0)
	require.NoError(t, err)
	require.Equal(t, manifestID, ph2.UUID)

	fromIdx, err := cp.GetPackReaderFromIdx(0)
	require.NoError(t, err)
	require.NotNil(t, fromIdx)

	r2, err := cp.Locate(dirID, nil)
	require.NoError(t, err)
	require.NotNil(t, r2)

	r3, err := cp.Locate(uuid.New(), nil)
	require.NoError(t, err)
	require.Nil(t, r3)

	ok2, err := cp.Check(src)
	require.NoError(t, err)
	require.True(t, ok2)

	_, err = cp.PackUUID(99)
	require.Error(t, err)
}
