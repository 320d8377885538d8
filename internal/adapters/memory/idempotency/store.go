package idempotency

import (
	"context"
	"sync"
	"time"

	clockport "github.com/Overland-East-Bay/club-roster/internal/ports/out/clock"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/idempotency"
)

// Store keeps idempotency records in memory for a retention window.
// A record older than ttl (by its CreatedAt) is treated as absent and
// evicted on lookup. A zero ttl keeps records for the process lifetime.
type Store struct {
	clk clockport.Clock
	ttl time.Duration

	mu sync.Mutex
	m  map[idempotency.Fingerprint]idempotency.Record
}

func NewStore(clk clockport.Clock, ttl time.Duration) *Store {
	return &Store{
		clk: clk,
		ttl: ttl,
		m:   make(map[idempotency.Fingerprint]idempotency.Record),
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return idempotency.Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	if s.expired(rec) {
		delete(s.m, fp)
		return idempotency.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[fp] = cloneRecord(rec)
	return nil
}

// Len reports the number of retained records, expired ones included until
// they are looked up.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Store) expired(rec idempotency.Record) bool {
	return s.ttl > 0 && !s.clk.Now().Before(rec.CreatedAt.Add(s.ttl))
}

func cloneRecord(rec idempotency.Record) idempotency.Record {
	out := rec
	if rec.Body != nil {
		out.Body = append([]byte(nil), rec.Body...)
	}
	return out
}
