// Package refresh периодически перечитывает доступность и конфликты
// просматриваемого мастера на дату и хранит последние снимки.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/pkg/bookingclient"
)

const (
	DefaultConflictsInterval    = 20 * time.Second
	DefaultAvailabilityInterval = 2 * time.Minute
	DefaultRequestTimeout       = 10 * time.Second
)

// ErrInvalidView возвращается при некорректных параметрах просмотра
var ErrInvalidView = errors.New("refresh: invalid view")

// Source источник данных (*bookingclient.Client)
type Source interface {
	GetAvailability(ctx context.Context, providerID int64, date time.Time, durationMinutes int) (*bookingclient.Availability, error)
	GetConflicts(ctx context.Context, providerID int64, date time.Time, durationMinutes int) (*bookingclient.Conflicts, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// View просматриваемый мастер и дата
type View struct {
	ProviderID      int64
	Date            time.Time
	DurationMinutes int // 0 - длительность мастера по умолчанию
}

// Option настройка планировщика
type Option func(*Scheduler)

func WithConflictsInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.conflictsInterval = d
		}
	}
}

func WithAvailabilityInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.availabilityInterval = d
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithOnUpdate задает колбэк, вызываемый после принятия нового снимка
func WithOnUpdate(fn func(kind Kind)) Option {
	return func(s *Scheduler) {
		s.onUpdate = fn
	}
}

// Scheduler опрашивает источник по двум интервалам и по явному запросу
type Scheduler struct {
	source               Source
	cache                *SnapshotCache
	view                 View
	conflictsInterval    time.Duration
	availabilityInterval time.Duration
	requestTimeout       time.Duration
	onUpdate             func(kind Kind)
	now                  func() time.Time
	logger               Logger
}

// NewScheduler создает планировщик для одного просмотра
func NewScheduler(source Source, cache *SnapshotCache, view View, logger Logger, opts ...Option) (*Scheduler, error) {
	if view.ProviderID <= 0 || view.Date.IsZero() || view.DurationMinutes < 0 {
		return nil, ErrInvalidView
	}

	s := &Scheduler{
		source:               source,
		cache:                cache,
		view:                 view,
		conflictsInterval:    DefaultConflictsInterval,
		availabilityInterval: DefaultAvailabilityInterval,
		requestTimeout:       DefaultRequestTimeout,
		now:                  time.Now,
		logger:               logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle управляет запущенным планировщиком
type Handle struct {
	refresh  chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Refresh запрашивает внеочередное чтение обоих видов данных (например, после неудачного бронирования).
// Не блокируется: повторные запросы до начала чтения схлопываются.
func (h *Handle) Refresh() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Stop останавливает таймеры и дожидается завершения всех чтений
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Done закрывается, когда планировщик полностью остановлен
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start запускает опрос. Первое чтение обоих видов выполняется сразу.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		refresh: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.loop(ctx, h)
	return h
}

func (s *Scheduler) loop(ctx context.Context, h *Handle) {
	var wg sync.WaitGroup
	defer close(h.done)
	defer wg.Wait()

	conflictsTicker := time.NewTicker(s.conflictsInterval)
	defer conflictsTicker.Stop()
	availabilityTicker := time.NewTicker(s.availabilityInterval)
	defer availabilityTicker.Stop()

	s.fire(ctx, &wg, KindConflicts)
	s.fire(ctx, &wg, KindAvailability)

	for {
		select {
		case <-ctx.Done():
			return
		case <-conflictsTicker.C:
			s.fire(ctx, &wg, KindConflicts)
		case <-availabilityTicker.C:
			s.fire(ctx, &wg, KindAvailability)
		case <-h.refresh:
			s.fire(ctx, &wg, KindConflicts)
			s.fire(ctx, &wg, KindAvailability)
		}
	}
}

// fire запускает чтение в отдельной горутине, не дожидаясь результата
func (s *Scheduler) fire(ctx context.Context, wg *sync.WaitGroup, kind Kind) {
	requestedAt := s.now()

	wg.Add(1)
	go func() {
		defer wg.Done()

		reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		accepted, err := s.fetch(reqCtx, kind, requestedAt)
		if err != nil {
			// Остановка планировщика не считается ошибкой чтения
			if ctx.Err() != nil {
				return
			}
			failures := s.cache.recordFailure(kind)
			s.logger.Warn("Refresh: %s fetch failed for provider=%d (failures=%d), keeping last snapshot: %v",
				kind, s.view.ProviderID, failures, err)
			return
		}

		if !accepted {
			s.logger.Info("Refresh: stale %s result discarded for provider=%d", kind, s.view.ProviderID)
			return
		}

		if s.onUpdate != nil {
			s.onUpdate(kind)
		}
	}()
}

func (s *Scheduler) fetch(ctx context.Context, kind Kind, requestedAt time.Time) (bool, error) {
	switch kind {
	case KindConflicts:
		conflicts, err := s.source.GetConflicts(ctx, s.view.ProviderID, s.view.Date, s.view.DurationMinutes)
		if err != nil {
			return false, err
		}
		return s.cache.offerConflicts(conflicts, requestedAt, s.now()), nil

	case KindAvailability:
		availability, err := s.source.GetAvailability(ctx, s.view.ProviderID, s.view.Date, s.view.DurationMinutes)
		if err != nil {
			return false, err
		}
		return s.cache.offerAvailability(availability, requestedAt, s.now()), nil
	}
	return false, nil
}
