// Package ratelimit provides a token bucket rate limiter used to pace
// outbound media fetches against the upstream CDN.
//
// The media relocator acquires a token before every fetch:
//
//	limiter := ratelimit.PerMinute(60)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
//	resp, err := client.Get(url)
package ratelimit
