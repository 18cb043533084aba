package scraper

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"profilegram/pkg/apify"
	"profilegram/pkg/config"
	"profilegram/pkg/errors"
	"profilegram/pkg/logger"
	"profilegram/pkg/models"
	"profilegram/pkg/normalize"
	"profilegram/pkg/retry"
	"profilegram/pkg/storage"
)

// Scraper orchestrates one profile scrape: submit the actor run, poll it,
// fetch the dataset, normalize the records, relocate media, and persist
// the resulting snapshot.
type Scraper struct {
	client       RunClient
	store        storage.Store
	media        MediaRelocator
	matcher      normalize.Matcher
	resultsLimit int
	retrier      *retry.Retrier
	logger       logger.Logger
}

// New creates a scraper. store and media may be nil: a nil store skips
// persistence and a nil media relocator keeps original URLs.
func New(client RunClient, store storage.Store, media MediaRelocator, cfg *config.ApifyConfig, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	retries := cfg.FetchRetries
	if retries <= 0 {
		retries = 3
	}
	retryDelay := cfg.FetchRetryDelay
	if retryDelay <= 0 {
		retryDelay = 3 * time.Second
	}

	retrier := retry.NewRetrier(&retry.Config{
		MaxAttempts: retries,
		Backoff:     &retry.ConstantBackoff{Delay: retryDelay},
		RetryIf:     retry.DefaultRetryIf,
		Context:     context.Background(),
		Logger:      log,
	})

	return &Scraper{
		client:       client,
		store:        store,
		media:        media,
		matcher:      normalize.ByName(cfg.ProfileMatcher),
		resultsLimit: cfg.ResultsLimit,
		retrier:      retrier,
		logger:       log,
	}
}

// WithMatcher overrides the profile matching strategy. Used by tests and
// callers that need a non-default heuristic.
func (s *Scraper) WithMatcher(m normalize.Matcher) *Scraper {
	s.matcher = m
	return s
}

// Run scrapes one username and returns the resulting snapshot. The error
// return is non-nil only for the two pre-flight failures, invalid input
// and a missing provider credential. Every failure past that point is
// degraded into the snapshot's status instead: zero records become
// empty_or_private, a missing profile record becomes partial_data, and
// anything unexpected becomes an error snapshot. The snapshot is persisted
// on every path before returning.
func (s *Scraper) Run(ctx context.Context, username string) (snapshot *models.ProfileSnapshot, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "username must not be empty")
	}
	if !s.client.Configured() {
		return nil, errors.New(errors.ErrorTypeNotConfigured, "apify token is not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorWithFields("scrape panicked", map[string]interface{}{
				"username": username,
				"panic":    fmt.Sprintf("%v", r),
			})
			snapshot = models.ErrorSnapshot(username, fmt.Sprintf("internal failure: %v", r))
			s.persist(ctx, username, snapshot)
			err = nil
		}
	}()

	log := s.logger.WithField("username", username)
	log.Info("starting profile scrape")

	records, fetchErr := s.fetchRecords(ctx, username)
	snapshot = s.buildSnapshot(ctx, username, records, fetchErr)
	s.persist(ctx, username, snapshot)

	log.WithFields(map[string]interface{}{
		"status": string(snapshot.Status),
		"posts":  len(snapshot.Posts),
	}).Info("profile scrape finished")

	return snapshot, nil
}

// fetchRecords runs the provider pipeline: start the actor run, wait for
// it, fetch the dataset items. Transient failures in the dataset fetch are
// retried with a fixed delay; exhaustion returns the last error so the
// caller can degrade to an empty record set.
func (s *Scraper) fetchRecords(ctx context.Context, username string) ([]models.RemoteRecord, error) {
	run, err := s.client.StartRun(ctx, apify.RunInput{
		Usernames:    []string{username},
		ResultsLimit: s.resultsLimit,
	})
	if err != nil {
		return nil, err
	}

	finished, err := s.client.WaitForRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	datasetID := finished.DatasetID
	if datasetID == "" {
		datasetID = run.DatasetID
	}

	var items []models.RemoteRecord
	err = s.retrier.WithContext(ctx).Do(func() error {
		var fetchErr error
		items, fetchErr = s.client.DatasetItems(ctx, datasetID)
		return fetchErr
	})
	return items, err
}

// buildSnapshot turns the fetched records and the fetch outcome into the
// snapshot the caller receives.
func (s *Scraper) buildSnapshot(ctx context.Context, username string, records []models.RemoteRecord, fetchErr error) *models.ProfileSnapshot {
	if fetchErr != nil {
		if isDegradable(fetchErr) {
			// Exhausted retries on a transient failure: proceed with an
			// empty record set rather than failing the call.
			s.logger.WarnWithFields("provider fetch degraded to empty result set", map[string]interface{}{
				"username": username,
				"error":    fetchErr.Error(),
			})
			snap := models.NewSnapshot(models.EmptyProfile(username), nil, models.StatusEmptyOrPrivate)
			snap.Error = fetchErr.Error()
			return snap
		}
		return models.ErrorSnapshot(username, fetchErr.Error())
	}

	if len(records) == 0 {
		return models.NewSnapshot(models.EmptyProfile(username), nil, models.StatusEmptyOrPrivate)
	}

	profileRec, matched := s.matcher(records, username)
	if !matched {
		// Records came back but none of them is the profile. Normalize
		// what we can from the first record and mark the result partial.
		profile := normalize.Profile(records[0], username)
		posts := s.relocatePosts(ctx, username, normalize.Posts(records))
		snap := models.NewSnapshot(profile, posts, models.StatusPartialData)
		snap.Error = "no profile record matched the requested username"
		return snap
	}

	profile := normalize.Profile(profileRec, username)
	if s.media != nil && profile.ProfilePicURL != "" {
		profile.ProfilePicURL = s.media.Relocate(ctx, profile.ProfilePicURL, username, 0)
	}

	posts := s.relocatePosts(ctx, username, normalize.Posts(records))

	return models.NewSnapshot(profile, posts, models.StatusSuccess)
}

// relocatePosts relocates every image of every post, preserving the source
// order of posts and of images within each post.
func (s *Scraper) relocatePosts(ctx context.Context, username string, posts []models.Post) []models.Post {
	if s.media == nil {
		return posts
	}

	for i := range posts {
		subject := username + "/" + posts[i].ID
		posts[i].Images = s.media.RelocateImages(ctx, posts[i].Images, subject)
		for j, video := range posts[i].Videos {
			posts[i].Videos[j] = s.media.Relocate(ctx, video, subject, len(posts[i].Images)+j)
		}
	}
	return posts
}

// persist writes the snapshot to every configured target. A write failure
// is recorded on the snapshot but never fails the scrape.
func (s *Scraper) persist(ctx context.Context, username string, snapshot *models.ProfileSnapshot) {
	if s.store == nil {
		return
	}

	if err := s.store.Upsert(ctx, username, snapshot); err != nil {
		s.logger.ErrorWithFields("failed to persist snapshot", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		if snapshot.Error == "" {
			snapshot.Error = fmt.Sprintf("persistence failed: %v", err)
		}
	}
}

// isDegradable reports whether a provider failure should degrade to an
// empty result set instead of an error snapshot.
func isDegradable(err error) bool {
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return errors.IsRetryable(typed.Type)
	}
	return false
}
