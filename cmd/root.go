package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nvalenz/libreria/internal/cache"
	"github.com/nvalenz/libreria/internal/catalog"
	"github.com/nvalenz/libreria/internal/config"
	"github.com/nvalenz/libreria/internal/covers"
	"github.com/nvalenz/libreria/internal/datastore"
	"github.com/nvalenz/libreria/internal/googlebooks"
	"github.com/nvalenz/libreria/internal/ingest"
)

// CLI represents the complete command structure for the libreria application
type CLI struct {
	// Global flags
	DBFile string `help:"Path to catalog SQLite database file" default:"./library.db"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 168h for 7 days)" default:"168h"`

	Ingest IngestCmd `cmd:"" help:"Fetch books by subject and load them into the catalog"`
	Cache  CacheCmd  `cmd:"" help:"Manage the API response cache"`
}

// IngestCmd represents the ingest command
type IngestCmd struct {
	Subjects       []string `short:"s" help:"Subject terms to search (repeatable, overrides config)"`
	SubjectsFile   string   `help:"Path to a YAML file listing subject terms"`
	MaxResults     int      `help:"Maximum volumes to fetch per subject" default:"40"`
	Language       string   `help:"Restrict results to a language code (empty for any)" default:"en"`
	DownloadCovers bool     `help:"Download cover images alongside the catalog"`
	CoverDir       string   `help:"Directory for downloaded cover images" default:"./covers/"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Clear cache.ClearCmd `cmd:"" help:"Clear cached Google Books responses"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("libreria"),
		kong.Description("A tool to build a book catalog from Google Books subject searches."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("database.file", "./library.db")
	viper.SetDefault("ingest.subjects", config.DefaultSubjects)
	viper.SetDefault("ingest.maxresults", 40)
	viper.SetDefault("ingest.language", "en")
	viper.SetDefault("covers.download", false)
	viper.SetDefault("covers.dir", "./covers/")

	// Cache defaults
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "168h") // 7 days

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	viper.Set("database.file", cli.DBFile)
	config.DatabaseFile = cli.DBFile

	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

// Run methods for each command

func (i *IngestCmd) Run() error {
	subjects, err := i.resolveSubjects()
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return fmt.Errorf("no subjects to ingest (provide via --subjects, --subjects-file or ingest.subjects in config)")
	}

	store := datastore.NewSQLiteStore(config.DatabaseFile)
	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	opts := ingest.Options{
		Subjects:   subjects,
		MaxResults: i.MaxResults,
		Language:   i.Language,
	}
	if i.DownloadCovers || config.DownloadCovers {
		coverDir := i.CoverDir
		if coverDir == "" {
			coverDir = config.CoverDir
		}
		opts.CoverDownloader = covers.NewDownloader(coverDir)
	}

	pipeline := ingest.NewPipeline(googlebooks.NewClient(), catalog.NewNormalizer(nil), store)

	result, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		return err
	}

	slog.Info("Catalog updated",
		"books_inserted", result.Stats.BooksInserted,
		"books_skipped", result.Stats.BooksSkipped,
		"author_links", result.Stats.AuthorLinks,
		"category_links", result.Stats.CategoryLinks,
		"covers_downloaded", result.CoversDownloaded)
	return nil
}

// resolveSubjects picks the subject list: explicit flags win, then a
// subjects file, then the configured defaults.
func (i *IngestCmd) resolveSubjects() ([]string, error) {
	if len(i.Subjects) > 0 {
		return i.Subjects, nil
	}
	if i.SubjectsFile != "" {
		return loadSubjectsFile(i.SubjectsFile)
	}
	return config.Subjects, nil
}

// loadSubjectsFile reads a YAML file containing a list of subject terms.
func loadSubjectsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subjects file: %w", err)
	}

	var subjects []string
	if err := yaml.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("failed to parse subjects file %s: %w", path, err)
	}
	return subjects, nil
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LIBRERIA_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
