package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"profilegram/internal/server"
	"profilegram/pkg/apify"
	"profilegram/pkg/config"
	"profilegram/pkg/logger"
	"profilegram/pkg/media"
	"profilegram/pkg/scraper"
	"profilegram/pkg/storage"
)

var (
	serveListenAddr string
	serveTargets    string
	serveDataDir    string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP scraping service",
	Long: `Run the HTTP service.

Endpoints:
  POST /api/v1/scrape                  trigger a scrape for a username
  GET  /api/v1/profiles/{username}     cached snapshot, scrape on miss
  GET  /api/v1/profiles/{u}?refresh=1  force a fresh scrape
  GET  /healthz                        health probe

The server shuts down gracefully on SIGINT and SIGTERM.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveTargets, "storage", "", "comma-separated storage targets: mongo,s3,file")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "directory for the flat-file store")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if serveListenAddr != "" {
		cfg.Server.ListenAddr = serveListenAddr
	}
	if serveTargets != "" {
		cfg.MergeCommandLineFlags(map[string]interface{}{"storage": serveTargets})
	}
	if serveDataDir != "" {
		cfg.Storage.File.Directory = serveDataDir
	}

	log := setupLogger(cfg)
	log.WithField("version", version).Info("profilegram starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, putter, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}

	svc := buildScraper(cfg, store, putter, log)
	srv := server.New(&cfg.Server, svc, store, log)

	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("http server failed")
	}
	log.Info("profilegram stopped")
}

// buildStores assembles the configured persistence targets. The returned
// ObjectPutter is non-nil only when the s3 target is configured; without it
// media relocation degrades to keeping original URLs.
func buildStores(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Store, storage.ObjectPutter, error) {
	var (
		stores []storage.Store
		putter storage.ObjectPutter
	)

	for _, target := range cfg.Storage.Targets {
		switch target {
		case config.TargetMongo:
			stores = append(stores, storage.NewMongoStore(cfg.Storage.Mongo))
		case config.TargetS3:
			s3Store, err := storage.NewS3Store(ctx, cfg.Storage.S3)
			if err != nil {
				return nil, nil, fmt.Errorf("s3 store: %w", err)
			}
			stores = append(stores, s3Store)
			putter = s3Store
		case config.TargetFile:
			fileStore, err := storage.NewFileStore(cfg.Storage.File.Directory)
			if err != nil {
				return nil, nil, fmt.Errorf("file store: %w", err)
			}
			stores = append(stores, fileStore)
		default:
			return nil, nil, fmt.Errorf("unknown storage target %q", target)
		}
	}

	switch len(stores) {
	case 0:
		return nil, putter, nil
	case 1:
		return stores[0], putter, nil
	default:
		return storage.NewMulti(stores, log), putter, nil
	}
}

func buildScraper(cfg *config.Config, store storage.Store, putter storage.ObjectPutter, log logger.Logger) *scraper.Scraper {
	client := apify.NewClient(&cfg.Apify, log)

	var relocator scraper.MediaRelocator
	if cfg.Media.Enabled && putter != nil {
		pool := media.NewPool(media.NewRelocator(putter, &cfg.Media, log), cfg.Media.ConcurrentFetches)
		relocator = pool
	}

	return scraper.New(client, store, relocator, &cfg.Apify, log)
}
