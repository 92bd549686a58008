package rangelock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_DisjointRangesDoNotBlock(t *testing.T) {
	l := New()
	ctx := context.Background()

	r1, err := l.Lock(ctx, "p1", 600, 660)
	require.NoError(t, err)
	r2, err := l.Lock(ctx, "p1", 660, 720)
	require.NoError(t, err)
	r3, err := l.Lock(ctx, "p2", 600, 660)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Held("p1"))
	assert.Equal(t, 1, l.Held("p2"))

	r1()
	r2()
	r3()
	r3()
	assert.Equal(t, 0, l.Held("p1"))
	assert.Equal(t, 0, l.Held("p2"))
}

func TestLocker_OverlapWaitsForRelease(t *testing.T) {
	l := New()
	ctx := context.Background()

	release, err := l.Lock(ctx, "p1", 600, 660)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := l.Lock(ctx, "p1", 630, 690)
		if err == nil {
			close(acquired)
			r()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("overlapping range acquired while held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("overlapping range was not acquired after release")
	}
}

func TestLocker_ContextCancel(t *testing.T) {
	l := New()
	release, err := l.Lock(context.Background(), "p1", 0, 10)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "p1", 5, 15)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, l.Held("p1"))
}

func TestLocker_InvalidRange(t *testing.T) {
	var l Locker
	_, err := l.Lock(context.Background(), "p1", 10, 10)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestLocker_MutualExclusion(t *testing.T) {
	l := New()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := l.Lock(ctx, "p1", 600, 660)
			if err != nil {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			r()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}
