// Package apify wraps the Apify REST API as an opaque remote job provider:
// submit a scrape request to an actor, poll the run until it finishes, and
// fetch the resulting dataset records.
//
// The three calls mirror the provider's job lifecycle:
//
//	run, err := client.StartRun(ctx, apify.RunInput{
//		Usernames:    []string{"example"},
//		ResultsLimit: 30,
//	})
//	run, err = client.WaitForRun(ctx, run.ID)
//	items, err := client.DatasetItems(ctx, run.DatasetID)
//
// All failures carry types from pkg/errors so the orchestrator's retry and
// degrade policies can distinguish transient fetch failures from missing
// configuration.
package apify
