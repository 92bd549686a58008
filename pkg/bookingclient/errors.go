package bookingclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated возвращается при отсутствующем или просроченном токене
	ErrUnauthenticated = errors.New("booking client: unauthenticated")

	// ErrValidation возвращается, когда сервер отклонил параметры запроса
	ErrValidation = errors.New("booking client: validation failed")

	// ErrForbidden возвращается, когда операция запрещена для пользователя
	ErrForbidden = errors.New("booking client: forbidden")

	// ErrUnavailable возвращается, когда сервис временно недоступен
	ErrUnavailable = errors.New("booking client: service unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("booking client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("booking client: invalid response")
)

const (
	ReasonAlreadyBooked       = "already-booked"
	ReasonProviderUnavailable = "provider-unavailable"
)

// ConflictError слот нельзя забронировать. Терминальна для слота:
// нужно обновить доступность и выбрать другое время.
type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking conflict: %s", e.Reason)
}

// IsConflict проверяет, что ошибка является конфликтом бронирования
func IsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// UnauthenticatedError токен отсутствует или истек, бронирование не отправлено.
// Request хранит намерение клиента, чтобы повторить его после повторного входа.
type UnauthenticatedError struct {
	Request *CreateBookingRequest
}

func (e *UnauthenticatedError) Error() string {
	return ErrUnauthenticated.Error()
}

func (e *UnauthenticatedError) Unwrap() error {
	return ErrUnauthenticated
}

// IsUnauthenticated возвращает сохраненный запрос, если бронирование отклонено из-за авторизации
func IsUnauthenticated(err error) (*UnauthenticatedError, bool) {
	var unauthenticated *UnauthenticatedError
	if errors.As(err, &unauthenticated) {
		return unauthenticated, true
	}
	return nil, false
}
