package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/kpix/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("a;b\n"), 0644))
}

func TestResolve_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anything.csv")
	touch(t, path)

	got, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolve_DirectoryPicksNewestExport(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "combined_kpis_1744632932827.csv"))
	touch(t, filepath.Join(dir, "combined_kpis_999.csv"))
	touch(t, filepath.Join(dir, "combined_kpis_1744700000000.csv"))
	touch(t, filepath.Join(dir, "combined_kpis_1744800000000.xlsx"))
	touch(t, filepath.Join(dir, "combined_kpis_latest.csv"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "combined_kpis_1999999999999.csv"), 0755))

	got, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "combined_kpis_1744700000000.csv"), got)
}

func TestResolve_EmptyDirectory(t *testing.T) {
	_, err := Resolve(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceFile))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
