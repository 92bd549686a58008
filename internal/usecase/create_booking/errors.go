package create_booking

import (
	"errors"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrUnauthenticated возвращается, когда клиент не определен
	ErrUnauthenticated = errors.New("create_booking: client is not authenticated")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrLockTimeout возвращается, когда интервал не удалось заблокировать за отведенное время
	ErrLockTimeout = errors.New("create_booking: timed out waiting for slot lock")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

var (
	// ErrAlreadyBooked возвращается, когда интервал пересекается с активным бронированием
	ErrAlreadyBooked = domain.NewConflictError(domain.ReasonAlreadyBooked)

	// ErrProviderUnavailable возвращается, когда мастер не работает в этот интервал
	ErrProviderUnavailable = domain.NewConflictError(domain.ReasonProviderUnavailable)
)
