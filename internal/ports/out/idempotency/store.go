package idempotency

import (
	"context"
	"time"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a request slot for idempotency purposes.
//
// Route is the route template (e.g. "/members"). The body hash is kept on the
// Record rather than here, so a reused key with a different body is found and
// rejected instead of re-executed.
type Fingerprint struct {
	Key    Key
	Method string
	Route  string
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	BodyHash    string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying responses on retries.
// Implementations may drop records after a retention window.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
