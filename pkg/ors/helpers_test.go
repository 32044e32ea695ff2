package ors

import "golang.org/x/time/rate"

// testRateLimit removes request pacing so tests don't sleep between calls.
func testRateLimit() Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	}
}
