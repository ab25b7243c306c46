package repo

import (
	"fmt"
	"time"
)

// DefaultLockTimeout bounds the wait for a row lock when no explicit
// timeout is configured.
const DefaultLockTimeout = 5000 * time.Millisecond

// LockWait carries the configured lock-wait bound. A zero value falls
// back to DefaultLockTimeout. Exceeding the bound surfaces as a
// conflict-class outcome ("record currently in use"), never as a hang.
type LockWait struct {
	timeout time.Duration
}

func NewLockWait(d time.Duration) LockWait {
	return LockWait{timeout: d}
}

// LockTimeout returns the effective lock-wait bound.
func (l LockWait) LockTimeout() time.Duration {
	if l.timeout <= 0 {
		return DefaultLockTimeout
	}
	return l.timeout
}

// lockTimeoutStmt renders the per-transaction lock_timeout setting.
// SET does not take bind parameters; the interpolated value is a plain
// integer of milliseconds.
func lockTimeoutStmt(d time.Duration) string {
	return fmt.Sprintf("SET LOCAL lock_timeout = %d", d.Milliseconds())
}
