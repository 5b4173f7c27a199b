// Package cache implements the response cache shared by completion calls.
package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache maps a fingerprint to an opaque value for at most TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
	PurgeExpired(ctx context.Context) int
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Backend   string        `json:"backend"`
	Entries   int           `json:"entries"`
	MaxSize   int           `json:"max_size"`
	TTL       time.Duration `json:"ttl"`
	Hits      uint64        `json:"hits"`
	Misses    uint64        `json:"misses"`
	Evictions uint64        `json:"evictions"`
	Expired   uint64        `json:"expired"`
}

const keySeparator = "\x1f"

// Fingerprint hashes the trimmed parts into a fixed-width hex digest.
// Collisions are treated as hits.
func Fingerprint(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.TrimSpace(p)
	}
	sum := xxhash.Sum64String(strings.Join(normalized, keySeparator))
	s := strconv.FormatUint(sum, 16)
	if len(s) < 16 {
		s = strings.Repeat("0", 16-len(s)) + s
	}
	return s
}
