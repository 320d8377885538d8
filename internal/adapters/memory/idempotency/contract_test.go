package idempotency

import (
	"testing"
	"time"

	"github.com/Overland-East-Bay/club-roster/internal/adapters/contracttest"
	memclock "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/clock"
	idempotencyport "github.com/Overland-East-Bay/club-roster/internal/ports/out/idempotency"
)

func TestContract_IdempotencyStore(t *testing.T) {
	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(memclock.NewManualClock(time.Unix(123, 0).UTC()), time.Hour), nil
	})
}
