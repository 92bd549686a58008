// Package rangelock provides an in-process lock over half-open integer
// intervals grouped by key. Two holders of the same key block each other
// only if their intervals overlap.
package rangelock

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidRange is returned when start >= end.
var ErrInvalidRange = errors.New("rangelock: start must be before end")

type held struct {
	start, end int
	done       chan struct{}
}

// Locker holds the currently acquired intervals for every key.
// The zero value is ready to use.
type Locker struct {
	mu   sync.Mutex
	keys map[string][]*held
}

// New returns an empty Locker.
func New() *Locker {
	return &Locker{keys: make(map[string][]*held)}
}

// Lock blocks until [start, end) can be held for key without overlapping
// another holder, or until ctx is done. The returned release func must be
// called exactly once; extra calls are no-ops.
func (l *Locker) Lock(ctx context.Context, key string, start, end int) (release func(), err error) {
	if start >= end {
		return nil, ErrInvalidRange
	}

	for {
		l.mu.Lock()
		if l.keys == nil {
			l.keys = make(map[string][]*held)
		}

		blocker := l.overlapping(key, start, end)
		if blocker == nil {
			h := &held{start: start, end: end, done: make(chan struct{})}
			l.keys[key] = append(l.keys[key], h)
			l.mu.Unlock()

			var once sync.Once
			return func() { once.Do(func() { l.release(key, h) }) }, nil
		}
		wait := blocker.done
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Held reports how many intervals are currently held for key.
func (l *Locker) Held(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys[key])
}

func (l *Locker) overlapping(key string, start, end int) *held {
	for _, h := range l.keys[key] {
		if start < h.end && h.start < end {
			return h
		}
	}
	return nil
}

func (l *Locker) release(key string, h *held) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.keys[key]
	for i, cur := range list {
		if cur == h {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(l.keys, key)
	} else {
		l.keys[key] = list
	}
	close(h.done)
}
