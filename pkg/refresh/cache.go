package refresh

import (
	"sync"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/pkg/bookingclient"
)

// Kind вид данных, которые обновляет планировщик
type Kind string

const (
	KindConflicts    Kind = "conflicts"
	KindAvailability Kind = "availability"
)

// Snapshot последний принятый результат чтения
type Snapshot[T any] struct {
	Value       T
	RequestedAt time.Time // время начала запроса, по нему принимаются результаты
	ReceivedAt  time.Time
}

type entry[T any] struct {
	snapshot Snapshot[T]
	ok       bool
	failures int
}

// offer принимает результат, только если запрос начат позже сохраненного
func (e *entry[T]) offer(value T, requestedAt, receivedAt time.Time) bool {
	if e.ok && !requestedAt.After(e.snapshot.RequestedAt) {
		return false
	}
	e.snapshot = Snapshot[T]{Value: value, RequestedAt: requestedAt, ReceivedAt: receivedAt}
	e.ok = true
	e.failures = 0
	return true
}

// SnapshotCache снимки доступности и конфликтов для одного просмотра.
// Создается вызывающим и передается планировщику и читателям.
type SnapshotCache struct {
	mu           sync.RWMutex
	availability entry[*bookingclient.Availability]
	conflicts    entry[*bookingclient.Conflicts]
}

// NewSnapshotCache создает пустой кэш снимков
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Availability возвращает последний снимок свободных слотов
func (c *SnapshotCache) Availability() (Snapshot[*bookingclient.Availability], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.availability.snapshot, c.availability.ok
}

// Conflicts возвращает последний снимок карты конфликтов
func (c *SnapshotCache) Conflicts() (Snapshot[*bookingclient.Conflicts], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conflicts.snapshot, c.conflicts.ok
}

// Failures количество неудачных чтений подряд с момента последнего принятого снимка
func (c *SnapshotCache) Failures(kind Kind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch kind {
	case KindAvailability:
		return c.availability.failures
	case KindConflicts:
		return c.conflicts.failures
	}
	return 0
}

func (c *SnapshotCache) offerAvailability(v *bookingclient.Availability, requestedAt, receivedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availability.offer(v, requestedAt, receivedAt)
}

func (c *SnapshotCache) offerConflicts(v *bookingclient.Conflicts, requestedAt, receivedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conflicts.offer(v, requestedAt, receivedAt)
}

func (c *SnapshotCache) recordFailure(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case KindAvailability:
		c.availability.failures++
		return c.availability.failures
	case KindConflicts:
		c.conflicts.failures++
		return c.conflicts.failures
	}
	return 0
}
