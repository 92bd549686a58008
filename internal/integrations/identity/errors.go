package identity

import "errors"

var (
	// ErrUnauthenticated возвращается, когда токен отсутствует, просрочен или отозван
	ErrUnauthenticated = errors.New("identity client: unauthenticated")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identity client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identity client: invalid response")

	// ErrUnavailable возвращается, когда circuit breaker разомкнут
	ErrUnavailable = errors.New("identity client: service unavailable")
)
