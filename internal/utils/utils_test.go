package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `toml:"name"`
	Count int    `toml:"count"`
}

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	require.NoError(t, SaveTOMLFile(sample{Name: "x", Count: 3}, path))

	var got sample
	require.NoError(t, LoadTOMLFile(path, &got))
	assert.Equal(t, sample{Name: "x", Count: 3}, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestParseTOMLWithRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nworkers = 2\nname = \"x\"\n"), 0o644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)

	section, ok := ExtractSection(data, "server")
	require.True(t, ok)

	workers, ok := ExtractInt64(section, "workers")
	assert.True(t, ok)
	assert.Equal(t, 2, workers)

	_, ok = ExtractInt64(section, "name")
	assert.False(t, ok)

	_, ok = ExtractSection(data, "missing")
	assert.False(t, ok)
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	result := CheckDirStatus(dir)
	assert.True(t, result.Exists)
	assert.True(t, result.Writable)
	assert.NoError(t, result.Error)
	assert.True(t, FileExists(dir))
}

func TestGetAbsolutePath(t *testing.T) {
	assert.Equal(t, "unknown", GetAbsolutePath(""))
	assert.Equal(t, "/etc/x.toml", GetAbsolutePath("/etc/x.toml"))
	assert.True(t, filepath.IsAbs(GetAbsolutePath("x.toml")))
}
