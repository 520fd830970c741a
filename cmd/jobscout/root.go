package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/scrape/browser"
	"jobscout-engine/internal/secrets"
)

var (
	flagDataDir string
	flagConfig  string
)

func main() {
	// .env is optional; real config lives in the YAML file.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "jobscout",
		Short:         "Scrape, filter, and rank AI/ML job listings from multiple boards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default $JOBSCOUT_DATA_DIR or .)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default <data-dir>/config.yml)")

	root.AddCommand(newSearchCmd())
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSecretCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func dataDir() (string, error) {
	dir := flagDataDir
	if dir == "" {
		dir = os.Getenv("JOBSCOUT_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// loadConfig bootstraps the user config on first run, then loads it.
func loadConfig() (config.Config, string, error) {
	dir, err := dataDir()
	if err != nil {
		return config.Config{}, "", err
	}

	path := flagConfig
	if path == "" {
		path, err = config.EnsureUserConfig(dir)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("config bootstrap failed: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
		cfg.App.DataDir = dir
	}
	return cfg, path, nil
}

// lockDataDir takes the single-instance lock. Two concurrent processes
// sharing one sqlite file and one browser profile is a corruption recipe.
func lockDataDir(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, "jobscout.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("another jobscout instance holds %s", lock.Path())
	}
	return lock, nil
}

// scrapeOptions wires the browser pool and keyring into the orchestrator.
// The pool is only started when some enabled source needs a browser.
func scrapeOptions(cfg config.Config) (scrape.Options, func(), error) {
	opts := scrape.Options{
		EmailPassword: func() (string, error) {
			return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		},
	}
	cleanup := func() {}

	if needsBrowser(cfg) {
		pool, err := browser.NewPlaywrightPool(browser.Options{
			Headless:    cfg.Browser.Headless,
			MaxContexts: cfg.Browser.MaxContexts,
		})
		if err != nil {
			return opts, cleanup, fmt.Errorf("browser start failed: %w", err)
		}
		opts.Browser = pool
		cleanup = func() {
			if err := pool.Close(); err != nil {
				log.Printf("[browser] close: %v", err)
			}
		}
	}
	return opts, cleanup, nil
}

func needsBrowser(cfg config.Config) bool {
	for name, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}
		switch name {
		case "remoteok", "emailalerts":
		default:
			return true
		}
	}
	return false
}
