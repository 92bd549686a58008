package slots

import "errors"

var (
	// ErrInvalidDuration возвращается при длительности вне допустимого диапазона
	ErrInvalidDuration = errors.New("slots: invalid duration")

	// ErrInvalidGrid возвращается, когда шаг сетки не делит сутки или вне диапазона
	ErrInvalidGrid = errors.New("slots: invalid grid")
)
