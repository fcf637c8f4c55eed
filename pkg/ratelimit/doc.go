// Package ratelimit throttles outgoing Instagram API requests.
//
// The Instagram client takes one token per request from a TokenBucket sized to
// the configured requests-per-minute. Wait blocks until a token is available or
// the context is done. WithSpacing additionally keeps consecutive requests apart.
package ratelimit
