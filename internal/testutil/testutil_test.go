package testutil

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalenz/libreria/internal/config"
)

func TestTestEnvWriteAndRead(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("sub/dir/file.txt", "hello")
	assert.True(t, env.FileExists("sub/dir/file.txt"))
	assert.Equal(t, "hello", env.ReadFileString("sub/dir/file.txt"))
}

func TestTestEnvPathStaysInSandbox(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("a", "b", "c.txt")
	assert.True(t, strings.HasPrefix(path, env.RootDir()))
}

func TestResetConfigRestoresState(t *testing.T) {
	original := config.DatabaseFile

	ResetConfig(t)
	config.DatabaseFile = "/tmp/changed.db"
	viper.Set("database.file", "/tmp/changed.db")

	// Cleanup runs after the test; here we just confirm the save captured
	// the pre-change value.
	state := ConfigState{DatabaseFile: original}
	RestoreConfigState(state)
	assert.Equal(t, original, config.DatabaseFile)
}

func TestSetupTestCache(t *testing.T) {
	dbPath := SetupTestCache(t)

	require.NotEmpty(t, dbPath)
	assert.Equal(t, dbPath, viper.GetString("cache.dbfile"))
	assert.Equal(t, "24h", viper.GetString("cache.ttl"))
}
