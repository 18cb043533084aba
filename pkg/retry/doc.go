// Package retry provides bounded retry with backoff for transient failures
// in network operations, particularly Apify dataset fetches and media
// downloads.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates wired to the pkg/errors taxonomy
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return client.FetchSomething(ctx)
//	}, nil)
//
//	// Fixed delay between a bounded number of attempts
//	items, err := retry.DoWithResult(func() ([]models.RemoteRecord, error) {
//		return apifyClient.DatasetItems(ctx, datasetID)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     &retry.ConstantBackoff{Delay: 3 * time.Second},
//		RetryIf:     retry.DefaultRetryIf,
//		Context:     ctx,
//	})
//
//	// Reusable retrier held by a long-lived component
//	r := retry.NewRetrier(&retry.Config{MaxAttempts: 3})
//	err = r.WithContext(ctx).Do(func() error {
//		return client.FetchSomething(ctx)
//	})
package retry
