package media

import (
	"context"
	"sync"

	"profilegram/pkg/models"
)

// Pool relocates a batch of images with a bounded number of workers while
// preserving the input order of the result slice. Workers receive indexes
// and write into their own slot, so no ordering coordination is needed.
type Pool struct {
	relocator *Relocator
	workers   int
}

// NewPool creates a relocation pool. workers below 1 degrades to a single
// worker.
func NewPool(relocator *Relocator, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{relocator: relocator, workers: workers}
}

// Relocate relocates a single URL through the underlying relocator.
func (p *Pool) Relocate(ctx context.Context, sourceURL, subjectID string, seq int) string {
	return p.relocator.Relocate(ctx, sourceURL, subjectID, seq)
}

// RelocateImages relocates each image's URL concurrently. The returned
// slice has the same length and order as the input; entries whose
// relocation failed keep their original URL.
func (p *Pool) RelocateImages(ctx context.Context, images []models.Image, subjectID string) []models.Image {
	if len(images) == 0 {
		return images
	}

	out := make([]models.Image, len(images))
	copy(out, images)

	workers := p.workers
	if workers > len(images) {
		workers = len(images)
	}

	jobs := make(chan int, len(images))
	for i := range images {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i].URL = p.relocator.Relocate(ctx, images[i].URL, subjectID, i)
			}
		}()
	}
	wg.Wait()

	return out
}
