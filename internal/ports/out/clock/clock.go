package clock

import "time"

// Clock stamps roster snapshots and idempotency records.
type Clock interface {
	Now() time.Time
}
