// Package limiter defines interfaces and implementations for request rate limiting.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter controls how often one client may call the server.
type Limiter interface {
	// Allow records one request for key and reports whether it may proceed,
	// with a retry-after duration when it may not.
	Allow(ctx context.Context, key []byte) (bool, time.Duration, error)
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}
