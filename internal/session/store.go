package session

import (
	"context"
	"time"
)

// Store persists session state between form submissions, keyed by the
// session cookie. A missing or expired session reads as Initial().
type Store interface {
	Get(ctx context.Context, sid string) (State, error)
	Put(ctx context.Context, sid string, s State) error
	Delete(ctx context.Context, sid string) error
}

// DefaultTTL bounds how long an abandoned form survives before the kiosk
// falls back to the home screen.
const DefaultTTL = 30 * time.Minute
