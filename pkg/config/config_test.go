package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
	assert.Equal(t, 3, cfg.Apify.FetchRetries)
	assert.Equal(t, 3*time.Second, cfg.Apify.FetchRetryDelay)
	assert.Equal(t, []string{TargetFile}, cfg.Storage.Targets)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APIFY_TOKEN", "apify_api_abc")
	t.Setenv("PROFILEGRAM_ACTOR_ID", "someone~custom-actor")
	t.Setenv("PROFILEGRAM_RESULTS_LIMIT", "50")
	t.Setenv("PROFILEGRAM_FETCH_RETRIES", "5")
	t.Setenv("PROFILEGRAM_LISTEN_ADDR", ":9090")
	t.Setenv("PROFILEGRAM_STORAGE_TARGETS", "mongo, file")
	t.Setenv("MONGODB_URI", "mongodb://db.example.com:27017")
	t.Setenv("MONGODB_DATABASE", "scrapes")
	t.Setenv("PROFILEGRAM_S3_BUCKET", "media-bucket")
	t.Setenv("PROFILEGRAM_DATA_DIR", "/var/lib/profilegram")
	t.Setenv("PROFILEGRAM_MEDIA_ENABLED", "false")
	t.Setenv("PROFILEGRAM_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "apify_api_abc", cfg.Apify.Token)
	assert.Equal(t, "someone~custom-actor", cfg.Apify.ActorID)
	assert.Equal(t, 50, cfg.Apify.ResultsLimit)
	assert.Equal(t, 5, cfg.Apify.FetchRetries)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"mongo", "file"}, cfg.Storage.Targets)
	assert.Equal(t, "mongodb://db.example.com:27017", cfg.Storage.Mongo.URI)
	assert.Equal(t, "scrapes", cfg.Storage.Mongo.Database)
	assert.Equal(t, "media-bucket", cfg.Storage.S3.Bucket)
	assert.Equal(t, "/var/lib/profilegram", cfg.Storage.File.Directory)
	assert.False(t, cfg.Media.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("PROFILEGRAM_RESULTS_LIMIT", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 30, cfg.Apify.ResultsLimit)
}

func TestLoadFromFile(t *testing.T) {
	content := `
apify:
  actor_id: "someone~custom-actor"
  results_limit: 10
  profile_matcher: "first_record"
server:
  listen_addr: ":3000"
storage:
  targets: ["file"]
  file:
    directory: "/tmp/snapshots"
logging:
  level: "warn"
`
	path := filepath.Join(t.TempDir(), "profilegram.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "someone~custom-actor", cfg.Apify.ActorID)
	assert.Equal(t, 10, cfg.Apify.ResultsLimit)
	assert.Equal(t, "first_record", cfg.Apify.ProfileMatcher)
	assert.Equal(t, ":3000", cfg.Server.ListenAddr)
	assert.Equal(t, "/tmp/snapshots", cfg.Storage.File.Directory)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Values absent from the file keep their defaults
	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apify: [not: valid"), 0600))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apify.ActorID = "someone~custom-actor"
	cfg.Storage.Targets = []string{TargetFile, TargetMongo}
	cfg.Storage.Mongo.URI = "mongodb://localhost:27017"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Apify.ActorID, loaded.Apify.ActorID)
	assert.Equal(t, cfg.Storage.Targets, loaded.Storage.Targets)
	assert.Equal(t, cfg.Apify.PollInterval, loaded.Apify.PollInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing actor id",
			mutate:  func(c *Config) { c.Apify.ActorID = "" },
			wantErr: "actor ID",
		},
		{
			name:    "zero results limit",
			mutate:  func(c *Config) { c.Apify.ResultsLimit = 0 },
			wantErr: "results limit",
		},
		{
			name:    "no storage targets",
			mutate:  func(c *Config) { c.Storage.Targets = nil },
			wantErr: "storage target",
		},
		{
			name:    "unknown storage target",
			mutate:  func(c *Config) { c.Storage.Targets = []string{"redis"} },
			wantErr: "unknown storage target",
		},
		{
			name: "mongo target without uri",
			mutate: func(c *Config) {
				c.Storage.Targets = []string{TargetMongo}
				c.Storage.Mongo.URI = ""
			},
			wantErr: "connection URI",
		},
		{
			name: "s3 target without bucket",
			mutate: func(c *Config) {
				c.Storage.Targets = []string{TargetS3}
			},
			wantErr: "bucket",
		},
		{
			name:    "file target without directory",
			mutate:  func(c *Config) { c.Storage.File.Directory = "" },
			wantErr: "directory",
		},
		{
			name:    "too many concurrent fetches",
			mutate:  func(c *Config) { c.Media.ConcurrentFetches = 50 },
			wantErr: "concurrent media fetches",
		},
		{
			name:   "zero requests per minute means unlimited",
			mutate: func(c *Config) { c.Media.RequestsPerMinute = 0 },
		},
		{
			name:    "negative requests per minute",
			mutate:  func(c *Config) { c.Media.RequestsPerMinute = -5 },
			wantErr: "requests per minute",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"listen":        ":7070",
		"data-dir":      "/srv/data",
		"storage":       "file,s3",
		"fetch-retries": 7,
		"log-level":     "error",
	})

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, "/srv/data", cfg.Storage.File.Directory)
	assert.Equal(t, []string{"file", "s3"}, cfg.Storage.Targets)
	assert.Equal(t, 7, cfg.Apify.FetchRetries)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b "))
	assert.Equal(t, []string{"mongo"}, splitAndTrim("mongo,"))
	assert.Empty(t, splitAndTrim(" , "))
}
