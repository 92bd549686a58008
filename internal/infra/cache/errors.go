package cache

import "errors"

var (
	// ErrCacheMiss возвращается, когда ключа нет в кэше
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCache возвращается при ошибках redis или сериализации
	ErrCache = errors.New("cache: redis error")

	// ErrStaleVersion возвращается, когда правила изменились между чтением и записью в кэш
	ErrStaleVersion = errors.New("cache: stale version")
)
