package scraper

import (
	"context"

	"profilegram/pkg/apify"
	"profilegram/pkg/models"
)

// RunClient is the slice of the Apify client the orchestrator needs. Tests
// substitute a fake.
type RunClient interface {
	Configured() bool
	StartRun(ctx context.Context, input apify.RunInput) (*apify.Run, error)
	WaitForRun(ctx context.Context, runID string) (*apify.Run, error)
	DatasetItems(ctx context.Context, datasetID string) ([]models.RemoteRecord, error)
}

// MediaRelocator moves media URLs into owned storage. Implementations never
// fail a scrape: on any error the original URL is kept.
type MediaRelocator interface {
	Relocate(ctx context.Context, sourceURL, subjectID string, seq int) string
	RelocateImages(ctx context.Context, images []models.Image, subjectID string) []models.Image
}
