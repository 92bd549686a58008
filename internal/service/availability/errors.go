package availability

import "errors"

var (
	// ErrRuleNotFound возвращается, когда правило не найдено у мастера
	ErrRuleNotFound = errors.New("availability: rule not found")

	// ErrOverrideNotFound возвращается, когда исключения на дату нет
	ErrOverrideNotFound = errors.New("availability: override not found")

	// ErrRuleOverlap возвращается, когда правило пересекается с другим активным правилом того же дня
	ErrRuleOverlap = errors.New("availability: rule overlaps another active rule")

	// ErrAccessDenied возвращается, когда пользователь не является владельцем расписания
	ErrAccessDenied = errors.New("availability: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
