package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"profilegram/pkg/auth"
	"profilegram/pkg/config"
	"profilegram/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "profilegram",
	Short: "Instagram profile scraping service backed by Apify",
	Long: `Profilegram scrapes public Instagram profiles through an Apify actor,
normalizes the results into a stable snapshot schema, relocates media into
object storage, and persists snapshots to MongoDB, S3 or flat files.

Run it as an HTTP service with 'profilegram serve' or scrape a single
profile from the command line with 'profilegram scrape <username>'.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./profilegram.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`Profilegram {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig merges the config file, environment variables and global flags
// and resolves the Apify token from the credential stores when the
// configuration itself does not carry one.
func loadConfig() (*config.Config, error) {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if cfg.Apify.Token == "" {
		if manager, err := auth.NewManager(); err == nil {
			if token, err := manager.Resolve(); err == nil {
				cfg.Apify.Token = token
			}
		}
	}

	return cfg, nil
}

func setupLogger(cfg *config.Config) logger.Logger {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger.GetLogger()
}
