package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/unilink/leaderboard/pkg/period"
	"github.com/unilink/leaderboard/pkg/rankStore"
	"github.com/unilink/leaderboard/pkg/storage"
	"github.com/unilink/leaderboard/pkg/types"
)

type fakeTransactionStore struct {
	mu     sync.Mutex
	txs    []*storage.RewardTransaction
	nextId uint64

	failInserts    bool
	failAggregates int
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{nextId: 1}
}

func (s *fakeTransactionStore) InsertTransaction(ctx context.Context, tx *storage.RewardTransaction) (*storage.RewardTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failInserts {
		return nil, types.Unavailable(context.DeadlineExceeded)
	}
	for _, existing := range s.txs {
		if existing.GiverId == tx.GiverId && existing.ExternalPostId == tx.ExternalPostId {
			return nil, types.ErrAlreadyRewarded
		}
	}
	tx.Id = s.nextId
	s.nextId++
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *fakeTransactionStore) AggregateByAuthor(ctx context.Context, window period.Window) (map[uint64]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAggregates > 0 {
		s.failAggregates--
		return nil, types.Unavailable(context.DeadlineExceeded)
	}
	totals := make(map[uint64]float64)
	for _, tx := range s.txs {
		if window.Contains(tx.CreatedAt) {
			totals[tx.AuthorId] += float64(tx.Points)
		}
	}
	return totals, nil
}

func (s *fakeTransactionStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.txs)), nil
}

type fakeRankStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]float64
	ttls    map[string]time.Duration

	failIncrements bool
	failReplaces   bool
}

func newFakeRankStore() *fakeRankStore {
	return &fakeRankStore{
		buckets: make(map[string]map[string]float64),
		ttls:    make(map[string]time.Duration),
	}
}

func (r *fakeRankStore) IncrementScores(ctx context.Context, member string, delta float64, buckets []string, expiring []string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failIncrements {
		return types.Unavailable(context.DeadlineExceeded)
	}
	for _, bucket := range buckets {
		if r.buckets[bucket] == nil {
			r.buckets[bucket] = make(map[string]float64)
		}
		r.buckets[bucket][member] += delta
	}
	if ttl > 0 {
		for _, bucket := range expiring {
			r.ttls[bucket] = ttl
		}
	}
	return nil
}

func (r *fakeRankStore) ReplaceBucket(ctx context.Context, bucket string, mapping map[string]float64, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failReplaces {
		return types.Unavailable(context.DeadlineExceeded)
	}
	delete(r.buckets, bucket)
	delete(r.ttls, bucket)
	if len(mapping) > 0 {
		contents := make(map[string]float64, len(mapping))
		for member, score := range mapping {
			contents[member] = score
		}
		r.buckets[bucket] = contents
	}
	if ttl > 0 {
		r.ttls[bucket] = ttl
	}
	return nil
}

func (r *fakeRankStore) TopN(ctx context.Context, bucket string, n int64) ([]rankStore.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]rankStore.Entry, 0)
	for member, score := range r.buckets[bucket] {
		entries = append(entries, rankStore.Entry{Member: member, Score: score})
	}
	// Redis orders ties by reverse-lexicographic member in ZREVRANGE; the
	// engine is responsible for the documented ascending tie-break.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Member > entries[j].Member
	})
	if int64(len(entries)) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (r *fakeRankStore) RankOf(ctx context.Context, bucket string, member string) (int64, float64, bool, error) {
	entries, err := r.TopN(ctx, bucket, int64(1<<30))
	if err != nil {
		return 0, 0, false, err
	}
	for i, entry := range entries {
		if entry.Member == member {
			return int64(i), entry.Score, true, nil
		}
	}
	return 0, 0, false, nil
}

func (r *fakeRankStore) Score(ctx context.Context, bucket string, member string) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, ok := r.buckets[bucket]
	if !ok {
		return 0, false, nil
	}
	score, ok := contents[member]
	return score, ok, nil
}

func (r *fakeRankStore) Delete(ctx context.Context, bucket string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets, bucket)
	delete(r.ttls, bucket)
	return nil
}

func (r *fakeRankStore) contents(bucket string) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make(map[string]float64, len(r.buckets[bucket]))
	for member, score := range r.buckets[bucket] {
		copied[member] = score
	}
	return copied
}

func (r *fakeRankStore) bucketNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.buckets))
	for name := range r.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fakeResolver struct {
	authors     map[string]uint64
	unavailable bool
}

func (f *fakeResolver) ResolvePostAuthor(ctx context.Context, externalPostId string) (uint64, error) {
	if f.unavailable {
		return 0, types.Unavailable(context.DeadlineExceeded)
	}
	authorId, ok := f.authors[externalPostId]
	if !ok {
		return 0, types.NotFound("post '%s'", externalPostId)
	}
	return authorId, nil
}
