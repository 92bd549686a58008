package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается, когда интервал пересекается с активным бронированием (exclusion constraint)
	ErrSlotTaken = errors.New("booking.repository: interval overlaps an active booking")

	// ErrInvalidTransition возвращается, когда бронирование не в том статусе, из которого допустим переход
	ErrInvalidTransition = errors.New("booking.repository: booking status does not allow this transition")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
