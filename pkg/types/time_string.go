package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

var (
	// ErrInvalidFormat возвращается, когда строка не соответствует формату HH:MM
	ErrInvalidFormat = errors.New("invalid time string format")

	// ErrOutOfRange возвращается, когда время выходит за пределы суток
	ErrOutOfRange = errors.New("time string out of range")
)

// TimeString время суток с точностью до минуты ("09:30").
// Значение "24:00" допустимо и обозначает конец суток (используется как правая граница окна).
// Нулевое значение означает "время не задано".
type TimeString struct {
	minutes int
	set     bool
}

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), set: true}
}

// NewTimeStringFromMinutes создает TimeString из количества минут от полуночи
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > minutesPerDay {
		return TimeString{}, fmt.Errorf("%w: %d minutes", ErrOutOfRange, minutes)
	}
	return TimeString{minutes: minutes, set: true}, nil
}

// NewTimeStringFromString парсит строку формата HH:MM или HH:MM:SS
func NewTimeStringFromString(s string) (TimeString, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeString{}, ErrInvalidFormat
	}

	for _, p := range parts {
		if len(p) != 2 {
			return TimeString{}, ErrInvalidFormat
		}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeString{}, ErrInvalidFormat
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeString{}, ErrInvalidFormat
	}
	if len(parts) == 3 {
		secs, err := strconv.Atoi(parts[2])
		if err != nil || secs != 0 {
			return TimeString{}, ErrInvalidFormat
		}
	}

	if mins < 0 || mins > 59 || hours < 0 || hours > 24 || (hours == 24 && mins != 0) {
		return TimeString{}, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}

	return TimeString{minutes: hours*60 + mins, set: true}, nil
}

// MustTimeString парсит строку и паникует при ошибке (для констант и тестов)
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// Minutes возвращает количество минут от полуночи
func (t TimeString) Minutes() int {
	return t.minutes
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return !t.set
}

// Validate проверяет корректность значения
func (t TimeString) Validate() error {
	if !t.set {
		return ErrInvalidFormat
	}
	if t.minutes < 0 || t.minutes > minutesPerDay {
		return ErrOutOfRange
	}
	return nil
}

// AddMinutes возвращает время, сдвинутое на n минут. Переход через полночь не допускается.
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	return NewTimeStringFromMinutes(t.minutes + n)
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// Equal возвращает true, если времена совпадают
func (t TimeString) Equal(other TimeString) bool {
	return t.set == other.set && t.minutes == other.minutes
}

// IsAligned возвращает true, если время кратно шагу сетки gridMinutes
func (t TimeString) IsAligned(gridMinutes int) bool {
	if gridMinutes <= 0 {
		return false
	}
	return t.minutes%gridMinutes == 0
}

// CeilTo округляет время вверх до ближайшего кратного gridMinutes
func (t TimeString) CeilTo(gridMinutes int) TimeString {
	if gridMinutes <= 0 {
		return t
	}
	rem := t.minutes % gridMinutes
	if rem == 0 {
		return t
	}
	return TimeString{minutes: t.minutes + gridMinutes - rem, set: t.set}
}

// On возвращает момент времени на указанную дату в заданной локации
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(t.minutes) * time.Minute)
}

// String возвращает время в формате HH:MM
func (t TimeString) String() string {
	if !t.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// MarshalJSON сериализует время как строку "HH:MM"
func (t TimeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON парсит время из строки "HH:MM"
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = TimeString{}
		return nil
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan реализует sql.Scanner для колонок типа TIME
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidFormat, src)
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if !t.set {
		return nil, nil
	}
	return t.String(), nil
}
