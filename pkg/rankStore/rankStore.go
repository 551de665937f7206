package rankStore

import (
	"context"
	"time"
)

// Entry is one (member, score) pair from a ranked bucket.
type Entry struct {
	Member string
	Score  float64
}

// RankStore is the serving index over an external sorted-set service. It is a
// cache of the transaction log: writes are best-effort per key and scheduled
// recomputation repairs any drift. The engine relies only on per-key
// atomicity and read-your-own-writes within one pipeline, never on cross-key
// transactions.
type RankStore interface {
	// IncrementScores applies delta to member in every bucket, pipelined.
	// Buckets listed in expiring also get their TTL (re)set to ttl.
	IncrementScores(ctx context.Context, member string, delta float64, buckets []string, expiring []string, ttl time.Duration) error

	// ReplaceBucket overwrites bucket wholesale in one pipeline:
	// delete, add mapping (skipped when empty), set ttl (skipped when zero).
	ReplaceBucket(ctx context.Context, bucket string, mapping map[string]float64, ttl time.Duration) error

	// TopN returns up to n entries ordered by descending score.
	TopN(ctx context.Context, bucket string, n int64) ([]Entry, error)

	// RankOf returns the 0-based descending rank and score of member, or
	// ok=false when the member is absent from the bucket.
	RankOf(ctx context.Context, bucket string, member string) (rank int64, score float64, ok bool, err error)

	// Score returns member's score, or ok=false when absent.
	Score(ctx context.Context, bucket string, member string) (score float64, ok bool, err error)

	Delete(ctx context.Context, bucket string) error
}
