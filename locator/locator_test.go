package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFilesystemLocator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.jbkc"), []byte("hello"), 0o600))

	l := NewFilesystem(dir)

	r, err := l.Locate(uuid.New(), []byte("pack.jbkc"))
	require.NoError(t, err)
	require.NotNil(t, r)
	require.Equal(t, uint64(5), uint64(r.Size()))

	r, err = l.Locate(uuid.New(), []byte("missing.jbkc"))
	require.NoError(t, err)
	require.Nil(t, r)

	r, err = l.Locate(uuid.New(), nil)
	require.NoError(t, err)
	require.Nil(t, r)
}

func TestChainTriesEachLocatorInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jbkc"), []byte("aaaa"), 0o600))

	missDir := t.TempDir()

	chain := NewChain(NewFilesystem(missDir), NewFilesystem(dir))

	r, err := chain.Locate(uuid.New(), []byte("a.jbkc"))
	require.NoError(t, err)
	require.NotNil(t, r)

	r, err = chain.Locate(uuid.New(), []byte("nope.jbkc"))
	require.NoError(t, err)
	require.Nil(t, r)
}
