package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ceremony.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	assert := require.New(t)
	path := writeTempConfig(t, `
smaxX: 16
smaxY: 8
blockhash: "deadbeef"
mode: "testing"
outFolder: "/tmp/ceremony"
`)

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal(16, c.SMaxX)
	assert.Equal(8, c.SMaxY)
	assert.Equal(ModeTesting, c.Mode)
	assert.Equal("/tmp/ceremony", c.OutFolder)
}

func TestLoadDefaultsModeToRandom(t *testing.T) {
	assert := require.New(t)
	path := writeTempConfig(t, `
smaxX: 4
smaxY: 4
outFolder: "/tmp/ceremony"
`)

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal(ModeRandom, c.Mode)
}

func TestLoadRejectsBadMode(t *testing.T) {
	assert := require.New(t)
	path := writeTempConfig(t, `
smaxX: 4
smaxY: 4
mode: "bogus"
outFolder: "/tmp/ceremony"
`)

	_, err := Load(path)
	assert.Error(err)
}

func TestLoadRejectsNonPositiveGrid(t *testing.T) {
	assert := require.New(t)
	path := writeTempConfig(t, `
smaxX: 0
smaxY: 4
outFolder: "/tmp/ceremony"
`)

	_, err := Load(path)
	assert.Error(err)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	assert := require.New(t)
	path := writeTempConfig(t, `
smaxX: 4
smaxY: 4
outFolder: "/tmp/ceremony"
`)

	t.Setenv("USE_GPU", "true")
	t.Setenv("SHARED_FOLDER_ID", "folder-123")

	c, err := Load(path)
	assert.NoError(err)
	assert.True(c.UseGPU)
	assert.Equal("folder-123", c.SharedFolderID)
}
