package rosterfeed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
)

// Snapshot is an immutable, fully materialized view of the roster at one
// publication. Consumers must treat the slices as read-only.
type Snapshot struct {
	// Version increases by one with every publication.
	Version     uint64
	PublishedAt time.Time

	// Members is the full roster in its current order.
	Members []domain.Member

	// Query is the active surname filter; empty means no filter.
	Query string
	// Visible holds the members of Members whose surname contains Query,
	// in the same order. It equals Members when Query is empty.
	Visible []domain.Member
}

// Publisher receives every snapshot produced by the roster store.
//
// Publish must not block on consumers: it is fire-and-forget, and a newer
// snapshot supersedes any unconsumed older one.
type Publisher interface {
	Publish(ctx context.Context, s Snapshot) error
}

// Subscription is one consumer's view of the feed.
//
// C has a single slot holding the most recent unconsumed snapshot. It is
// closed on Unsubscribe.
type Subscription struct {
	ID uuid.UUID
	C  <-chan Snapshot
}

// Source lets consumers observe published snapshots.
type Source interface {
	Subscribe() Subscription
	// Unsubscribe is safe to call more than once.
	Unsubscribe(sub Subscription)
	Latest() (Snapshot, bool)
}
