package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the profile scraping service
type Config struct {
	// Apify remote job provider settings
	Apify ApifyConfig `yaml:"apify" json:"apify"`

	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Storage backend settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Media relocation settings
	Media MediaConfig `yaml:"media" json:"media"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ApifyConfig holds settings for the Apify actor that performs the scraping
type ApifyConfig struct {
	Token           string        `yaml:"token" json:"token"`
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	ActorID         string        `yaml:"actor_id" json:"actor_id"`
	ResultsLimit    int           `yaml:"results_limit" json:"results_limit"`
	PollInterval    time.Duration `yaml:"poll_interval" json:"poll_interval"`
	MaxPollAttempts int           `yaml:"max_poll_attempts" json:"max_poll_attempts"`
	FetchRetries    int           `yaml:"fetch_retries" json:"fetch_retries"`
	FetchRetryDelay time.Duration `yaml:"fetch_retry_delay" json:"fetch_retry_delay"`
	ProfileMatcher  string        `yaml:"profile_matcher" json:"profile_matcher"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StorageConfig selects and configures the snapshot persistence backends.
// Targets lists the backends every snapshot is written to; reads try them
// in the same order.
type StorageConfig struct {
	Targets []string    `yaml:"targets" json:"targets"`
	Mongo   MongoConfig `yaml:"mongo" json:"mongo"`
	S3      S3Config    `yaml:"s3" json:"s3"`
	File    FileConfig  `yaml:"file" json:"file"`
}

// Storage target names accepted in StorageConfig.Targets.
const (
	TargetMongo = "mongo"
	TargetS3    = "s3"
	TargetFile  = "file"
)

// MongoConfig holds document store connection settings
type MongoConfig struct {
	URI        string `yaml:"uri" json:"uri"`
	Database   string `yaml:"database" json:"database"`
	Collection string `yaml:"collection" json:"collection"`
}

// S3Config holds object store settings
type S3Config struct {
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url" json:"public_base_url"`
}

// FileConfig holds flat-file store settings
type FileConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// MediaConfig holds media relocation settings
type MediaConfig struct {
	Enabled            bool          `yaml:"enabled" json:"enabled"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	ConcurrentFetches  int           `yaml:"concurrent_fetches" json:"concurrent_fetches"`
	RequestsPerMinute  int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Apify: ApifyConfig{
			BaseURL:         "https://api.apify.com/v2",
			ActorID:         "apify~instagram-scraper",
			ResultsLimit:    30,
			PollInterval:    3 * time.Second,
			MaxPollAttempts: 40,
			FetchRetries:    3,
			FetchRetryDelay: 3 * time.Second,
			ProfileMatcher:  "username",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Targets: []string{TargetFile},
			Mongo: MongoConfig{
				Database:   "profilegram",
				Collection: "snapshots",
			},
			File: FileConfig{
				Directory: "./data",
			},
		},
		Media: MediaConfig{
			Enabled:           true,
			FetchTimeout:      30 * time.Second,
			ConcurrentFetches: 3,
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Apify credentials and tuning
	if token := os.Getenv("APIFY_TOKEN"); token != "" {
		c.Apify.Token = token
	}
	if actorID := os.Getenv("PROFILEGRAM_ACTOR_ID"); actorID != "" {
		c.Apify.ActorID = actorID
	}
	if limit := os.Getenv("PROFILEGRAM_RESULTS_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Apify.ResultsLimit = val
		}
	}
	if retries := os.Getenv("PROFILEGRAM_FETCH_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Apify.FetchRetries = val
		}
	}

	// Server
	if addr := os.Getenv("PROFILEGRAM_LISTEN_ADDR"); addr != "" {
		c.Server.ListenAddr = addr
	}

	// Storage targets, comma separated
	if targets := os.Getenv("PROFILEGRAM_STORAGE_TARGETS"); targets != "" {
		c.Storage.Targets = splitAndTrim(targets)
	}

	// Mongo
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		c.Storage.Mongo.URI = uri
	}
	if db := os.Getenv("MONGODB_DATABASE"); db != "" {
		c.Storage.Mongo.Database = db
	}

	// S3
	if region := os.Getenv("AWS_REGION"); region != "" {
		c.Storage.S3.Region = region
	}
	if bucket := os.Getenv("PROFILEGRAM_S3_BUCKET"); bucket != "" {
		c.Storage.S3.Bucket = bucket
	}
	if endpoint := os.Getenv("PROFILEGRAM_S3_ENDPOINT"); endpoint != "" {
		c.Storage.S3.Endpoint = endpoint
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		c.Storage.S3.AccessKeyID = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		c.Storage.S3.SecretAccessKey = secret
	}
	if base := os.Getenv("PROFILEGRAM_S3_PUBLIC_BASE_URL"); base != "" {
		c.Storage.S3.PublicBaseURL = base
	}

	// File store
	if dir := os.Getenv("PROFILEGRAM_DATA_DIR"); dir != "" {
		c.Storage.File.Directory = dir
	}

	// Media relocation
	if enabled := os.Getenv("PROFILEGRAM_MEDIA_ENABLED"); enabled != "" {
		c.Media.Enabled = strings.ToLower(enabled) == "true"
	}

	// Logging level
	if logLevel := os.Getenv("PROFILEGRAM_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".profilegram.yaml",
		".profilegram.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "profilegram", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "profilegram", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".profilegram.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. The Apify token is not
// validated here: its absence is reported at the point of use so that read
// endpoints backed by cached snapshots keep working without it.
func (c *Config) Validate() error {
	var errs []error

	if c.Apify.ActorID == "" {
		errs = append(errs, errors.New("apify actor ID is required"))
	}
	if c.Apify.ResultsLimit <= 0 {
		errs = append(errs, errors.New("apify results limit must be positive"))
	}
	if c.Apify.PollInterval <= 0 {
		errs = append(errs, errors.New("apify poll interval must be positive"))
	}
	if c.Apify.MaxPollAttempts <= 0 {
		errs = append(errs, errors.New("apify max poll attempts must be positive"))
	}
	if c.Apify.FetchRetries < 0 {
		errs = append(errs, errors.New("apify fetch retries cannot be negative"))
	}

	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server listen address is required"))
	}

	if len(c.Storage.Targets) == 0 {
		errs = append(errs, errors.New("at least one storage target is required"))
	}
	for _, target := range c.Storage.Targets {
		switch target {
		case TargetMongo:
			if c.Storage.Mongo.URI == "" {
				errs = append(errs, errors.New("mongo storage target requires a connection URI"))
			}
			if c.Storage.Mongo.Database == "" {
				errs = append(errs, errors.New("mongo storage target requires a database name"))
			}
		case TargetS3:
			if c.Storage.S3.Bucket == "" {
				errs = append(errs, errors.New("s3 storage target requires a bucket name"))
			}
		case TargetFile:
			if c.Storage.File.Directory == "" {
				errs = append(errs, errors.New("file storage target requires a directory"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown storage target: %s", target))
		}
	}

	if c.Media.ConcurrentFetches <= 0 {
		errs = append(errs, errors.New("concurrent media fetches must be positive"))
	}
	if c.Media.ConcurrentFetches > 10 {
		errs = append(errs, errors.New("concurrent media fetches should not exceed 10"))
	}
	if c.Media.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("media requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if listenAddr, ok := flags["listen"].(string); ok && listenAddr != "" {
		c.Server.ListenAddr = listenAddr
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Storage.File.Directory = dataDir
	}
	if targets, ok := flags["storage"].(string); ok && targets != "" {
		c.Storage.Targets = splitAndTrim(targets)
	}
	if retries, ok := flags["fetch-retries"].(int); ok && retries > 0 {
		c.Apify.FetchRetries = retries
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".profilegram.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
