package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/nvalenz/libreria/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	DatabaseFile   string
	Subjects       []string
	MaxResults     int
	Language       string
	DownloadCovers bool
	CoverDir       string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		DatabaseFile:   config.DatabaseFile,
		Subjects:       config.Subjects,
		MaxResults:     config.MaxResults,
		Language:       config.Language,
		DownloadCovers: config.DownloadCovers,
		CoverDir:       config.CoverDir,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.DatabaseFile = state.DatabaseFile
	config.Subjects = state.Subjects
	config.MaxResults = state.MaxResults
	config.Language = state.Language
	config.DownloadCovers = state.DownloadCovers
	config.CoverDir = state.CoverDir
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()

	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetupTestCache points the response cache at a temporary database so
// tests never share cache state. Returns the cache database path.
func SetupTestCache(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test-cache.db")
	viper.Set("cache.dbfile", dbPath)
	viper.Set("cache.ttl", "24h")

	t.Cleanup(func() {
		viper.Set("cache.dbfile", "")
		viper.Set("cache.ttl", "")
	})

	return dbPath
}
