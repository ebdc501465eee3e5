package config

import (
	"github.com/spf13/viper"
)

// DefaultSubjects is the curated subject list used when neither the config
// file nor the command line provides one.
var DefaultSubjects = []string{
	"fiction",
	"nonfiction",
	"romance",
	"mystery",
	"science fiction",
	"fantasy",
	"biography",
	"history",
	"literature",
	"poetry",
	"programming",
	"data science",
	"artificial intelligence",
	"business",
	"self-help",
}

// Global configuration variables
var (
	// DatabaseFile is the path to the catalog SQLite database
	DatabaseFile string
	// Subjects is the list of subject terms to ingest
	Subjects []string
	// MaxResults is the per-subject result cap for API searches
	MaxResults int
	// Language restricts searches to a language code, empty for any
	Language string
	// DownloadCovers controls whether cover images are fetched locally
	DownloadCovers bool
	// CoverDir is the directory cover images are written to
	CoverDir string
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("database.file", "./library.db")
	viper.SetDefault("ingest.subjects", DefaultSubjects)
	viper.SetDefault("ingest.maxresults", 40)
	viper.SetDefault("ingest.language", "en")
	viper.SetDefault("covers.download", false)
	viper.SetDefault("covers.dir", "./covers/")
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "168h")

	// Get values from viper
	DatabaseFile = viper.GetString("database.file")
	Subjects = viper.GetStringSlice("ingest.subjects")
	MaxResults = viper.GetInt("ingest.maxresults")
	Language = viper.GetString("ingest.language")
	DownloadCovers = viper.GetBool("covers.download")
	CoverDir = viper.GetString("covers.dir")
}

// SetDownloadCovers sets the DownloadCovers flag
func SetDownloadCovers(download bool) {
	DownloadCovers = download
}
