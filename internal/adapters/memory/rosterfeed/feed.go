package rosterfeed

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/club-roster/internal/ports/out/rosterfeed"
)

// Feed is an in-memory, latest-value-wins implementation of
// rosterfeed.Publisher and rosterfeed.Source.
//
// Every subscriber owns a channel with a single slot. Publish replaces
// whatever is still sitting in that slot, so a slow consumer skips straight
// to the newest snapshot instead of working through a backlog. Nothing is
// buffered beyond the latest snapshot.
type Feed struct {
	mu sync.Mutex

	latest    rosterfeed.Snapshot
	hasLatest bool

	subs map[uuid.UUID]chan rosterfeed.Snapshot
}

func NewFeed() *Feed {
	return &Feed{
		subs: make(map[uuid.UUID]chan rosterfeed.Snapshot),
	}
}

// Publish records s as the latest snapshot and offers it to every subscriber.
// Snapshots older than the latest published version are ignored. Publish
// never blocks, so ctx cancellation does not stop a publication.
func (f *Feed) Publish(ctx context.Context, s rosterfeed.Snapshot) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hasLatest && s.Version <= f.latest.Version {
		return nil
	}
	f.latest = s
	f.hasLatest = true

	for _, ch := range f.subs {
		offer(ch, s)
	}
	return nil
}

// Subscribe registers a new subscriber. The returned channel is primed with
// the latest snapshot when one exists.
func (f *Feed) Subscribe() rosterfeed.Subscription {
	ch := make(chan rosterfeed.Snapshot, 1)
	id := uuid.New()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.subs[id] = ch
	if f.hasLatest {
		ch <- f.latest
	}
	return rosterfeed.Subscription{ID: id, C: ch}
}

// Unsubscribe removes the subscription and closes its channel.
// Unknown or already-removed subscriptions are ignored.
func (f *Feed) Unsubscribe(sub rosterfeed.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.subs[sub.ID]
	if !ok {
		return
	}
	delete(f.subs, sub.ID)
	close(ch)
}

func (f *Feed) Latest() (rosterfeed.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.hasLatest
}

// Subscribers reports the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// offer overwrites the single slot of ch with s. Must be called with f.mu
// held: Publish is the only sender, so after the drain the send cannot block.
func offer(ch chan rosterfeed.Snapshot, s rosterfeed.Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
