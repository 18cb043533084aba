package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"profilegram/pkg/config"
	"profilegram/pkg/errors"
	"profilegram/pkg/logger"
	"profilegram/pkg/models"
	"profilegram/pkg/retry"
)

// Run statuses reported by the actor-runs endpoint.
const (
	RunStatusReady     = "READY"
	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
	RunStatusAborted   = "ABORTED"
	RunStatusTimedOut  = "TIMED-OUT"
)

// RunInput is the input document submitted to the scraping actor.
type RunInput struct {
	Usernames    []string `json:"usernames"`
	ResultsLimit int      `json:"resultsLimit"`
	ResultsType  string   `json:"resultsType,omitempty"`
}

// Run is a handle to a submitted actor run.
type Run struct {
	ID        string
	Status    string
	DatasetID string
}

// Finished reports whether the run has reached a terminal status.
func (r *Run) Finished() bool {
	switch r.Status {
	case RunStatusSucceeded, RunStatusFailed, RunStatusAborted, RunStatusTimedOut:
		return true
	}
	return false
}

// Client talks to the Apify REST API: start an actor run, poll it to
// completion, and fetch the resulting dataset items.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	token           string
	actorID         string
	pollInterval    time.Duration
	maxPollAttempts int
	logger          logger.Logger
}

// NewClient creates a client from configuration. A missing token is not an
// error here: Configured() is checked at the point of use so that cached
// reads keep working without a credential.
func NewClient(cfg *config.ApifyConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:         cfg.BaseURL,
		token:           cfg.Token,
		actorID:         cfg.ActorID,
		pollInterval:    cfg.PollInterval,
		maxPollAttempts: cfg.MaxPollAttempts,
		logger:          log,
	}
}

// Configured reports whether the provider credential is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

// StartRun submits one actor run with the given input and returns its handle.
func (c *Client) StartRun(ctx context.Context, input RunInput) (*Run, error) {
	url := fmt.Sprintf("%s/acts/%s/runs?token=%s", c.baseURL, c.actorID, c.token)

	body, err := json.Marshal(input)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to marshal run input: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugWithFields("starting actor run", map[string]interface{}{
		"actor_id":  c.actorID,
		"usernames": input.Usernames,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to start actor run: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &errors.Error{
			Type:    errorTypeForStatus(resp.StatusCode),
			Message: fmt.Sprintf("failed to start actor run: status %d, body: %s", resp.StatusCode, respBody),
			Code:    resp.StatusCode,
		}
	}

	var result struct {
		Data struct {
			ID               string `json:"id"`
			Status           string `json:"status"`
			DefaultDatasetID string `json:"defaultDatasetId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Newf(errors.ErrorTypeParsing, "failed to decode run response: %v", err)
	}

	c.logger.InfoWithFields("actor run started", map[string]interface{}{
		"run_id": result.Data.ID,
	})

	return &Run{
		ID:        result.Data.ID,
		Status:    result.Data.Status,
		DatasetID: result.Data.DefaultDatasetID,
	}, nil
}

// WaitForRun polls the run until it reaches a terminal status or the poll
// attempt budget is exhausted. A run that ends in any status other than
// SUCCEEDED is a transient fetch failure: the caller's degrade policy
// decides what to do with it.
func (c *Client) WaitForRun(ctx context.Context, runID string) (*Run, error) {
	statusURL := fmt.Sprintf("%s/actor-runs/%s?token=%s", c.baseURL, runID, c.token)

	for attempt := 1; attempt <= c.maxPollAttempts; attempt++ {
		if err := retry.Wait(ctx, c.pollInterval); err != nil {
			return nil, err
		}

		run, err := c.fetchRun(ctx, statusURL)
		if err != nil {
			return nil, err
		}

		if run.ID == "" {
			run.ID = runID
		}

		if run.Status == RunStatusSucceeded {
			return run, nil
		}
		if run.Finished() {
			return run, errors.Newf(errors.ErrorTypeTransientFetch, "actor run ended with status %s", run.Status)
		}

		c.logger.DebugWithFields("actor run still in progress", map[string]interface{}{
			"run_id":  runID,
			"status":  run.Status,
			"attempt": attempt,
		})
	}

	return nil, errors.Newf(errors.ErrorTypeTransientFetch,
		"actor run %s did not finish within %d poll attempts", runID, c.maxPollAttempts)
}

func (c *Client) fetchRun(ctx context.Context, statusURL string) (*Run, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to fetch run status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.Error{
			Type:    errorTypeForStatus(resp.StatusCode),
			Message: fmt.Sprintf("run status request returned %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	var status struct {
		Data struct {
			ID               string `json:"id"`
			Status           string `json:"status"`
			DefaultDatasetID string `json:"defaultDatasetId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, errors.Newf(errors.ErrorTypeParsing, "failed to decode run status: %v", err)
	}

	return &Run{
		ID:        status.Data.ID,
		Status:    status.Data.Status,
		DatasetID: status.Data.DefaultDatasetID,
	}, nil
}

// DatasetItems fetches the result records of a finished run. Records may be
// heterogeneous: profile-shaped and post-shaped items mixed in one dataset.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]models.RemoteRecord, error) {
	url := fmt.Sprintf("%s/datasets/%s/items?token=%s", c.baseURL, datasetID, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to fetch dataset items: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.Error{
			Type:    errorTypeForStatus(resp.StatusCode),
			Message: fmt.Sprintf("dataset request returned %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	var items []models.RemoteRecord
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, errors.Newf(errors.ErrorTypeParsing, "failed to decode dataset items: %v", err)
	}

	c.logger.DebugWithFields("fetched dataset items", map[string]interface{}{
		"dataset_id": datasetID,
		"count":      len(items),
		"duration":   time.Since(start),
	})

	return items, nil
}

// errorTypeForStatus maps HTTP status codes from the Apify API to the
// error taxonomy so retry predicates treat them correctly.
func errorTypeForStatus(statusCode int) errors.ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return errors.ErrorTypeNotConfigured
	case statusCode == http.StatusNotFound:
		return errors.ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return errors.ErrorTypeTransientFetch
	case statusCode >= 500:
		return errors.ErrorTypeServerError
	default:
		return errors.ErrorTypeUnknown
	}
}
