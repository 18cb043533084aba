package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"profilegram/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Profilegram configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'profilegram.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like the Apify token are masked.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# Profilegram Configuration File
#
# All values can also be provided via environment variables; see the
# README for the full list. The Apify token is best stored with
# 'profilegram auth login' rather than in this file.

apify:
  # token: ""                 # prefer 'profilegram auth login' or APIFY_TOKEN
  base_url: "https://api.apify.com/v2"
  actor_id: "apify~instagram-scraper"
  results_limit: 30
  poll_interval: 3s
  max_poll_attempts: 40
  fetch_retries: 3
  fetch_retry_delay: 3s
  profile_matcher: "username"  # or "first_record"

server:
  listen_addr: ":8080"
  read_timeout: 15s
  write_timeout: 5m
  shutdown_timeout: 10s

storage:
  targets: ["file"]            # any of: mongo, s3, file
  mongo:
    uri: "mongodb://localhost:27017"
    database: "profilegram"
    collection: "snapshots"
  s3:
    region: "us-east-1"
    bucket: ""
    endpoint: ""               # set for S3-compatible stores like MinIO
    public_base_url: ""
  file:
    directory: "./data"

media:
  enabled: false               # requires the s3 storage target
  fetch_timeout: 30s
  concurrent_fetches: 3
  requests_per_minute: 60

logging:
  level: "info"
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "profilegram.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "configuration file already exists: %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write configuration file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	masked := *cfg
	masked.Apify.Token = maskSecret(cfg.Apify.Token)
	masked.Storage.S3.SecretAccessKey = maskSecret(cfg.Storage.S3.SecretAccessKey)

	out, err := yaml.Marshal(&masked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "configuration is invalid: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration is invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration is valid.")
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
