// Package keylock serializes work on a single key, either inside one process
// or across instances through Redis.
package keylock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the lock could not be taken before ctx ended.
var ErrNotAcquired = errors.New("keylock: lock not acquired")

// Locker hands out exclusive ownership of a key. The returned release func is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
