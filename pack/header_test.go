package pack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

// packHeaderFixture is the literal Content-pack PackHeader byte vector
// carried by the engine this format was distilled from; it pins down the
// exact field layout and the big-endian CRC-32C trailer.
func packHeaderFixture() []byte {
	content := []byte{
		0x6a, 0x62, 0x6b, 0x63, // magic "jbk" + 'c'
		0x00, 0x00, 0x00, 0x01, // app_vendor_id
		0x00,                                           // major_version
		0x02,                                           // minor_version
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, // uuid
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, // uuid (cont.)
		0x00,                   // flags
		0x00, 0x00, 0x00, 0x00, 0x00, // padding
		0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // file_size
		0xee, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // check_info_pos
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // padding
	}

	return append(content, 0xA1, 0x6A, 0x08, 0x3F) // CRC-32C trailer
}

func TestParsePackHeaderAtFixture(t *testing.T) {
	src := source.NewMemorySource(packHeaderFixture())
	r := source.NewReaderToEnd(src, 0)

	h, err := ParsePackHeaderAt(r, 0)
	require.NoError(t, err)

	require.Equal(t, format.PackKindContent, h.Magic)
	require.Equal(t, VendorId{0, 0, 0, 1}, h.AppVendorId)
	require.Equal(t, uint8(0), h.MajorVersion)
	require.Equal(t, uint8(2), h.MinorVersion)
	require.Equal(t, source.Size(0xFFFF), h.FileSize)
	require.Equal(t, source.Offset(0xFFEE), h.CheckInfoPos)
	require.Equal(t, byte(0x00), h.UUID[0])
	require.Equal(t, byte(0x0f), h.UUID[15])
}

func TestPackHeaderRoundTrip(t *testing.T) {
	id := mustUUID(t)
	h := NewPackHeader(format.PackKindDirectory, VendorId{1, 2, 3, 4}, id, 12345, 678)
	h.Flags = 0x07

	block := h.AppendBlock(nil)
	require.Len(t, block, HeaderBlockSize)

	src := source.NewMemorySource(block)
	r := source.NewReaderToEnd(src, 0)

	got, err := ParsePackHeaderAt(r, 0)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestParsePackHeaderRejectsBadMagic(t *testing.T) {
	data := packHeaderFixture()
	data[0] = 'x'

	src := source.NewMemorySource(data)
	r := source.NewReaderToEnd(src, 0)

	_, err := ParsePackHeaderAt(r, 0)
	require.Error(t, err)
}

func TestParsePackHeaderRejectsUnsupportedVersion(t *testing.T) {
	data := packHeaderFixture()
	data[9] = 0x09 // minor_version

	// The fixture's trailing CRC no longer matches after this edit, and
	// ParsePackHeaderAt verifies the CRC before decoding any field, so it
	// would reject on the CRC first; exercise the version path directly
	// against the field decoder instead.
	_, err := parsePackHeader(data[:headerFieldsSize])
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrVersion)
}

func mustUUID(t *testing.T) (id [16]byte) {
	t.Helper()
	for i := range id {
		id[i] = byte(i)
	}

	return id
}
