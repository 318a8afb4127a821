// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"
)

// DefaultPath is the well-known lock path shared by every spawnctl
// invocation on a host. It is deliberately not parameterized by manager
// identity: two spawnctl runs against different managers on the same host
// serialize against each other (a documented limitation).
const DefaultPath = "/tmp/spawnctl.lock"

var (
	// ErrLockTimeout is returned when the lock could not be acquired
	// within an attempt's timeout.
	ErrLockTimeout = errors.New("lock acquisition timed out")

	// ErrLockRetriesExhausted is returned when every retry attempt timed out.
	ErrLockRetriesExhausted = errors.New("lock retries exhausted")
)

// pollInterval is how often a blocked Acquire re-tries the flock.
const pollInterval = 100 * time.Millisecond

// RetryPolicy controls bounded-retry acquisition.
type RetryPolicy struct {
	// MaxAttempts is the number of acquisition attempts before giving up.
	MaxAttempts int

	// AttemptTimeout bounds a single blocking acquisition attempt.
	AttemptTimeout time.Duration

	// Delay is the pause between consecutive attempts.
	Delay time.Duration

	// OnRetry, if set, is invoked after each timed-out attempt with the
	// 1-based attempt number. Used for progress logging.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy matches the historical spawner behavior:
// five attempts of twenty seconds each, three seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		AttemptTimeout: 20 * time.Second,
		Delay:          3 * time.Second,
	}
}

// Lock is a host-scoped advisory lock backed by flock(2) on a well-known
// path. The open file descriptor holds the lock; Release closes it.
// Release is idempotent and safe to call even if acquisition never
// succeeded, so callers can unconditionally defer it.
type Lock struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// New creates a lock for the given path. The lock is not acquired.
func New(path string) *Lock {
	if path == "" {
		path = DefaultPath
	}
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire blocks up to timeout trying to take the exclusive lock,
// polling the non-blocking flock until it succeeds or the deadline
// passes. Returns ErrLockTimeout on deadline, or the context error if
// ctx is cancelled first.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return nil // already held by this handle
	}

	// World-writable so invocations by unrelated users still serialize.
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return fmt.Errorf("failed to open lock file %s: %w", l.path, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			l.file = f
			return nil
		}
		if err != syscall.EWOULDBLOCK {
			f.Close()
			return fmt.Errorf("failed to lock %s: %w", l.path, err)
		}

		if time.Now().After(deadline) {
			f.Close()
			return fmt.Errorf("%w after %v (%s)", ErrLockTimeout, timeout, l.path)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// AcquireRetry runs Acquire under the given policy. A timed-out attempt
// is followed by policy.Delay and another attempt, up to
// policy.MaxAttempts. Non-timeout errors fail immediately.
func (l *Lock) AcquireRetry(ctx context.Context, policy RetryPolicy) error {
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := l.Acquire(ctx, policy.AttemptTimeout)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrLockTimeout) {
			return err
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err)
		}
		if attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Delay):
		}
	}
	return fmt.Errorf("%w: %d attempts of %v each", ErrLockRetriesExhausted, policy.MaxAttempts, policy.AttemptTimeout)
}

// Release drops the lock. Calling Release on a lock that was never
// acquired, or releasing twice, is a no-op.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	f := l.file
	l.file = nil

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("failed to unlock %s: %w", l.path, err)
	}
	return f.Close()
}

// Held reports whether this handle currently holds the lock.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file != nil
}
