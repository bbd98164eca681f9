package clicks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/samoylenkodmitry/shrtlin/core"
)

type clickEvent struct {
	millis int64
	qr     bool
}

// MemoryClickStore implements ports.ClickStore in process, for tests
// and deployments without Redis.
type MemoryClickStore struct {
	mu     sync.Mutex
	events map[int64][]clickEvent
}

// NewMemoryClickStore creates an empty in-memory click store.
func NewMemoryClickStore() *MemoryClickStore {
	return &MemoryClickStore{events: make(map[int64][]clickEvent)}
}

func (s *MemoryClickStore) Record(_ context.Context, urlID int64, qr bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[urlID] = append(s.events[urlID], clickEvent{millis: time.Now().UnixMilli(), qr: qr})
	return nil
}

func (s *MemoryClickStore) Range(_ context.Context, urlID int64, period core.Period) (map[string]int, error) {
	bucket, err := period.BucketSeconds()
	if err != nil {
		return nil, err
	}
	window, err := period.WindowSeconds()
	if err != nil {
		return nil, err
	}

	end := time.Now().UnixMilli()
	start := end - window*1000
	width := bucket * 1000

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int)
	for _, ev := range s.events[urlID] {
		if ev.millis < start || ev.millis > end {
			continue
		}
		bucketStart := ev.millis - ev.millis%width
		out[strconv.FormatInt(bucketStart, 10)]++
	}
	return out, nil
}
