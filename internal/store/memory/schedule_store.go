package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/openpredict/marketd/internal/domain"
)

type bucketKey struct {
	kind   domain.ScheduleKind
	height uint64
}

// ScheduleStore is an in-memory domain.ScheduleStore.
type ScheduleStore struct {
	mu      sync.Mutex
	buckets map[bucketKey][]uint64
}

// NewScheduleStore creates an empty ScheduleStore.
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{buckets: make(map[bucketKey][]uint64)}
}

// Add appends a market id to the bucket at height.
func (s *ScheduleStore) Add(ctx context.Context, kind domain.ScheduleKind, height uint64, marketID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := bucketKey{kind: kind, height: height}
	s.buckets[k] = append(s.buckets[k], marketID)
	return nil
}

// Remove deletes a single market id from the bucket at height. Missing
// entries are ignored.
func (s *ScheduleStore) Remove(ctx context.Context, kind domain.ScheduleKind, height uint64, marketID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := bucketKey{kind: kind, height: height}
	ids := s.buckets[k]
	for i, id := range ids {
		if id == marketID {
			s.buckets[k] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.buckets[k]) == 0 {
		delete(s.buckets, k)
	}
	return nil
}

// Take drains and returns every bucket at height <= upTo, oldest first.
func (s *ScheduleStore) Take(ctx context.Context, kind domain.ScheduleKind, upTo uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []bucketKey
	for k := range s.buckets {
		if k.kind == kind && k.height <= upTo {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].height < keys[j].height })

	var ids []uint64
	for _, k := range keys {
		ids = append(ids, s.buckets[k]...)
		delete(s.buckets, k)
	}
	return ids, nil
}
