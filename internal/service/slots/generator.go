package slots

import (
	"fmt"
	"iter"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// Input входные данные генератора слотов.
// Генерация является чистой функцией Input: одинаковый Input дает одинаковую последовательность.
type Input struct {
	Rules           []*domain.AvailabilityRule
	Override        *domain.AvailabilityOverride // nil, если исключения на дату нет
	Date            time.Time                    // календарная дата
	DurationMinutes int
	GridMinutes     int
	Now             time.Time
	Location        *time.Location // часовой пояс мастера
	IncludePast     bool           // выдавать прошедшие слоты (для карты конфликтов)
}

// Sequence ленивая, конечная и перезапускаемая последовательность слотов на дату
type Sequence struct {
	date        time.Time
	windows     []domain.Interval
	duration    int
	grid        int
	now         time.Time
	loc         *time.Location
	includePast bool

	blocked       bool
	blockedReason *string
}

// Generate строит последовательность слотов.
// Для заблокированной даты возвращается пустая последовательность с причиной блокировки.
func Generate(in Input) (*Sequence, error) {
	if in.DurationMinutes <= 0 || in.DurationMinutes > domain.MaxDurationMinutes {
		return nil, fmt.Errorf("%w: duration %d", ErrInvalidDuration, in.DurationMinutes)
	}
	if !domain.IsValidGrid(in.GridMinutes) {
		return nil, fmt.Errorf("%w: grid %d", ErrInvalidGrid, in.GridMinutes)
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	seq := &Sequence{
		date:        domain.DateOnly(in.Date),
		duration:    in.DurationMinutes,
		grid:        in.GridMinutes,
		now:         in.Now,
		loc:         loc,
		includePast: in.IncludePast,
	}

	if in.Override != nil && in.Override.IsBlocked {
		seq.blocked = true
		seq.blockedReason = in.Override.Reason
		return seq, nil
	}

	seq.windows = domain.EffectiveRules(in.Rules, in.Override, seq.date)
	return seq, nil
}

// Blocked возвращает true, если дата закрыта исключением
func (s *Sequence) Blocked() bool {
	return s.blocked
}

// BlockedReason причина блокировки (может быть nil)
func (s *Sequence) BlockedReason() *string {
	return s.blockedReason
}

// All возвращает итератор по слотам в порядке возрастания времени начала.
// Каждый вызов All проходит последовательность заново.
func (s *Sequence) All() iter.Seq[domain.TimeSlot] {
	return func(yield func(domain.TimeSlot) bool) {
		if s.blocked {
			return
		}
		if !s.includePast && s.date.Before(domain.Today(s.now, s.loc)) {
			return
		}

		// Окна не пересекаются, но если это нарушено, один и тот же старт не выдается дважды
		lastStart := -1
		for _, w := range s.windows {
			// Сетка абсолютная (от полуночи), поэтому слоты разных запросов сравнимы
			start := ceilTo(w.Start, s.grid)
			for ; start+s.duration <= w.End; start += s.grid {
				if start <= lastStart {
					continue
				}
				if !s.includePast && !domain.IsStrictlyFuture(s.date, start, s.now, s.loc) {
					continue
				}

				slot, ok := s.slotAt(start)
				if !ok {
					return
				}
				lastStart = start
				if !yield(slot) {
					return
				}
			}
		}
	}
}

// Collect материализует последовательность
func (s *Sequence) Collect() []domain.TimeSlot {
	out := make([]domain.TimeSlot, 0)
	for slot := range s.All() {
		out = append(out, slot)
	}
	return out
}

func (s *Sequence) slotAt(start int) (domain.TimeSlot, bool) {
	startTime, err := types.NewTimeStringFromMinutes(start)
	if err != nil {
		return domain.TimeSlot{}, false
	}
	endTime, err := types.NewTimeStringFromMinutes(start + s.duration)
	if err != nil {
		return domain.TimeSlot{}, false
	}
	return domain.TimeSlot{
		Date:            s.date,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: s.duration,
	}, true
}

func ceilTo(minutes, grid int) int {
	if rem := minutes % grid; rem != 0 {
		return minutes + grid - rem
	}
	return minutes
}
