package config

import "errors"

var (
	// ErrAccessDenied возвращается, когда пользователь не является владельцем настроек
	ErrAccessDenied = errors.New("config: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("config: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("config: internal error")
)
