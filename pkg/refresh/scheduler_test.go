package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/pkg/bookingclient"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
)

var (
	date = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	view = View{ProviderID: 7, Date: date}
)

// fakeSource отвечает функциями, заданными в тесте
type fakeSource struct {
	mu                sync.Mutex
	conflictsCalls    int
	availabilityCalls int
	conflicts         func(call int) (*bookingclient.Conflicts, error)
}

func (f *fakeSource) GetAvailability(context.Context, int64, time.Time, int) (*bookingclient.Availability, error) {
	f.mu.Lock()
	f.availabilityCalls++
	f.mu.Unlock()
	return &bookingclient.Availability{ProviderID: 7, Date: "2025-01-01"}, nil
}

func (f *fakeSource) GetConflicts(ctx context.Context, _ int64, _ time.Time, _ int) (*bookingclient.Conflicts, error) {
	f.mu.Lock()
	f.conflictsCalls++
	call := f.conflictsCalls
	f.mu.Unlock()

	if f.conflicts == nil {
		return &bookingclient.Conflicts{DurationMinutes: call}, nil
	}
	return f.conflicts(call)
}

func (f *fakeSource) calls() (conflicts, availability int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conflictsCalls, f.availabilityCalls
}

// tickingClock строго возрастающее время
func tickingClock() func() time.Time {
	var n int64
	return func() time.Time {
		return date.Add(time.Duration(atomic.AddInt64(&n, 1)) * time.Millisecond)
	}
}

func newScheduler(t *testing.T, source Source, cache *SnapshotCache, opts ...Option) *Scheduler {
	t.Helper()
	s, err := NewScheduler(source, cache, view, logger.NewNop(), opts...)
	require.NoError(t, err)
	s.now = tickingClock()
	return s
}

func TestSnapshotCache_LastWriteWins(t *testing.T) {
	cache := NewSnapshotCache()
	t1 := date.Add(time.Second)
	t2 := date.Add(2 * time.Second)

	assert.True(t, cache.offerConflicts(&bookingclient.Conflicts{DurationMinutes: 2}, t2, t2))
	assert.False(t, cache.offerConflicts(&bookingclient.Conflicts{DurationMinutes: 1}, t1, t2.Add(time.Second)))
	assert.False(t, cache.offerConflicts(&bookingclient.Conflicts{DurationMinutes: 3}, t2, t2.Add(time.Second)))

	snapshot, ok := cache.Conflicts()
	require.True(t, ok)
	assert.Equal(t, 2, snapshot.Value.DurationMinutes)
	assert.Equal(t, t2, snapshot.RequestedAt)

	_, ok = cache.Availability()
	assert.False(t, ok)
}

func TestScheduler_InitialFetchAndStop(t *testing.T) {
	source := &fakeSource{}
	cache := NewSnapshotCache()

	h := newScheduler(t, source, cache, WithConflictsInterval(time.Hour), WithAvailabilityInterval(time.Hour)).
		Start(context.Background())

	require.Eventually(t, func() bool {
		_, okConflicts := cache.Conflicts()
		_, okAvailability := cache.Availability()
		return okConflicts && okAvailability
	}, time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
	default:
		t.Fatal("handle is not done after Stop")
	}

	conflicts, availability := source.calls()
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 1, availability)
}

func TestScheduler_TicksOnBothCadences(t *testing.T) {
	source := &fakeSource{}

	h := newScheduler(t, source, NewSnapshotCache(),
		WithConflictsInterval(5*time.Millisecond), WithAvailabilityInterval(time.Hour)).
		Start(context.Background())
	defer h.Stop()

	require.Eventually(t, func() bool {
		conflicts, _ := source.calls()
		return conflicts >= 3
	}, time.Second, 5*time.Millisecond)

	_, availability := source.calls()
	assert.Equal(t, 1, availability)
}

func TestScheduler_StaleInFlightReadDiscarded(t *testing.T) {
	release := make(chan struct{})
	source := &fakeSource{conflicts: func(call int) (*bookingclient.Conflicts, error) {
		if call == 1 {
			<-release
			return &bookingclient.Conflicts{DurationMinutes: 1}, nil
		}
		return &bookingclient.Conflicts{DurationMinutes: call}, nil
	}}
	cache := NewSnapshotCache()

	h := newScheduler(t, source, cache, WithConflictsInterval(time.Hour), WithAvailabilityInterval(time.Hour)).
		Start(context.Background())

	require.Eventually(t, func() bool {
		conflicts, _ := source.calls()
		return conflicts == 1
	}, time.Second, time.Millisecond)

	h.Refresh()
	require.Eventually(t, func() bool {
		snapshot, ok := cache.Conflicts()
		return ok && snapshot.Value.DurationMinutes == 2
	}, time.Second, 5*time.Millisecond)

	// Первый запрос завершается последним, но начат раньше
	close(release)
	h.Stop()

	snapshot, ok := cache.Conflicts()
	require.True(t, ok)
	assert.Equal(t, 2, snapshot.Value.DurationMinutes)
}

func TestScheduler_FailureKeepsLastSnapshot(t *testing.T) {
	source := &fakeSource{conflicts: func(call int) (*bookingclient.Conflicts, error) {
		if call == 1 {
			return &bookingclient.Conflicts{DurationMinutes: 60}, nil
		}
		return nil, bookingclient.ErrUnavailable
	}}
	cache := NewSnapshotCache()

	h := newScheduler(t, source, cache, WithConflictsInterval(5*time.Millisecond), WithAvailabilityInterval(time.Hour)).
		Start(context.Background())

	require.Eventually(t, func() bool {
		return cache.Failures(KindConflicts) >= 2
	}, time.Second, 5*time.Millisecond)
	h.Stop()

	snapshot, ok := cache.Conflicts()
	require.True(t, ok)
	assert.Equal(t, 60, snapshot.Value.DurationMinutes)
	assert.Zero(t, cache.Failures(KindAvailability))
}

func TestScheduler_OnUpdate(t *testing.T) {
	var mu sync.Mutex
	seen := map[Kind]int{}

	h := newScheduler(t, &fakeSource{}, NewSnapshotCache(),
		WithConflictsInterval(time.Hour), WithAvailabilityInterval(time.Hour),
		WithOnUpdate(func(kind Kind) {
			mu.Lock()
			seen[kind]++
			mu.Unlock()
		})).
		Start(context.Background())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[KindConflicts] == 1 && seen[KindAvailability] == 1
	}, time.Second, 5*time.Millisecond)
	h.Stop()
}

func TestScheduler_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newScheduler(t, &fakeSource{}, NewSnapshotCache()).Start(ctx)

	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestNewScheduler_InvalidView(t *testing.T) {
	_, err := NewScheduler(&fakeSource{}, NewSnapshotCache(), View{ProviderID: 0, Date: date}, logger.NewNop())
	assert.True(t, errors.Is(err, ErrInvalidView))

	_, err = NewScheduler(&fakeSource{}, NewSnapshotCache(), View{ProviderID: 7}, logger.NewNop())
	assert.ErrorIs(t, err, ErrInvalidView)
}
