package idempotency

import (
	"context"
	"time"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Key length bounds accepted at the HTTP edge.
const (
	MinKeyLength = 8
	MaxKeyLength = 255
)

// Fingerprint identifies a request uniquely for idempotency purposes.
//
// Strategy: key + route + request body hash. Route is the HTTP method plus the path template
// (e.g. "POST /api/students"). A record stored with an empty BodyHash is the meta record that
// remembers which body hash the key was first used with.
type Fingerprint struct {
	Key      Key
	Method   string
	Route    string
	BodyHash string
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying safe responses on retries.
// Put overwrites an existing record with the same fingerprint.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
