package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var scrapeStdout bool

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <username>",
	Short: "Scrape one profile and print the snapshot",
	Long: `Scrape a single Instagram profile and print the resulting snapshot
as JSON. The snapshot is also written to the configured storage targets,
so a subsequent 'serve' picks it up from cache.`,
	Example: `  # Scrape a profile
  profilegram scrape natgeo

  # Scrape without persisting
  profilegram scrape natgeo --stdout-only`,
	Args: cobra.ExactArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().BoolVar(&scrapeStdout, "stdout-only", false, "print the snapshot without persisting it")
}

func runScrape(cmd *cobra.Command, args []string) {
	username := strings.TrimSpace(args[0])

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, putter, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}
	if scrapeStdout {
		store = nil
	}

	svc := buildScraper(cfg, store, putter, log)

	snapshot, err := svc.Run(ctx, username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrape failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
