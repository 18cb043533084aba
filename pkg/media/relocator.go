package media

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"profilegram/pkg/config"
	"profilegram/pkg/logger"
	"profilegram/pkg/ratelimit"
	"profilegram/pkg/storage"
)

// maxMediaBytes caps a single media download. Anything larger is left at
// its original URL.
const maxMediaBytes = 20 << 20

// Relocator copies a remote media asset into the object store so the
// served snapshot does not depend on the upstream CDN's URL lifetime.
/// Relocation is best-effort: every failure falls back to the source URL
// and never surfaces to the caller.
type Relocator struct {
	store   storage.ObjectPutter
	client  *http.Client
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewRelocator builds a relocator. A nil store (object store not
// configured, or relocation disabled) degrades to identity relocation.
func NewRelocator(store storage.ObjectPutter, cfg *config.MediaConfig, log logger.Logger) *Relocator {
	if log == nil {
		log = logger.GetLogger()
	}
	if !cfg.Enabled {
		store = nil
	}

	return &Relocator{
		store: store,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		limiter: ratelimit.PerMinute(cfg.RequestsPerMinute),
		logger:  log,
	}
}

// Relocate fetches the bytes at sourceURL and uploads them under a
// deterministic key derived from the subject and its sequence index.
// It returns the stable URL on success and sourceURL unchanged on any
// failure.
func (r *Relocator) Relocate(ctx context.Context, sourceURL, subjectID string, seq int) string {
	if r.store == nil || sourceURL == "" {
		return sourceURL
	}

	data, contentType, err := r.fetch(ctx, sourceURL)
	if err != nil {
		r.logger.DebugWithFields("media fetch failed, keeping original URL", map[string]interface{}{
			"url":   sourceURL,
			"error": err.Error(),
		})
		return sourceURL
	}

	key := Key(subjectID, seq, contentType)
	stableURL, err := r.store.Put(ctx, key, data, contentType)
	if err != nil {
		r.logger.WarnWithFields("media upload failed, keeping original URL", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return sourceURL
	}

	r.logger.DebugWithFields("relocated media", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})

	return stableURL
}

func (r *Relocator) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxMediaBytes {
		return nil, "", fmt.Errorf("media exceeds %d byte limit", maxMediaBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}

// Key returns the deterministic object key for a piece of media: the
// subject it belongs to plus its position within that subject.
func Key(subjectID string, seq int, contentType string) string {
	return fmt.Sprintf("media/%s/%d%s", subjectID, seq, extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}
