package notifier

import "errors"

var (
	// ErrEncodePayload возвращается, когда событие не удалось сериализовать
	ErrEncodePayload = errors.New("notifier: failed to encode payload")

	// ErrEnqueue возвращается, когда задачу не удалось поставить в очередь
	ErrEnqueue = errors.New("notifier: failed to enqueue task")
)
