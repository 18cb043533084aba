// Package scraper is the composition root of a profile scrape. It wires
// the Apify run client, the normalizer, the media relocator and the
// persistence gateway into a single Run operation with a degrade-to-status
// failure policy: past input validation and credential checks, failures
// become snapshot statuses rather than returned errors.
package scraper
