package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BeautyBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/identity"
)

const (
	msgUnauthenticated     = "требуется авторизация"
	msgIdentityUnavailable = "сервис авторизации временно недоступен"
)

type principalKey struct{}

// PrincipalResolver интерфейс проверки bearer-токена
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Principal, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth проверяет токен через identity и кладет пользователя в контекст
func Auth(resolver PrincipalResolver, log Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Context(), handlers.BearerToken(r))
			if err != nil {
				switch {
				case errors.Is(err, identity.ErrUnauthenticated):
					log.Warn("Auth: %s %s - unauthenticated", r.Method, r.URL.Path)
					handlers.RespondUnauthorized(w, msgUnauthenticated)
				case errors.Is(err, identity.ErrUnavailable):
					log.Warn("Auth: %s %s - identity unavailable: %v", r.Method, r.URL.Path, err)
					handlers.RespondServiceUnavailable(w, msgIdentityUnavailable)
				default:
					log.Error("Auth: %s %s - failed to resolve token: %v", r.Method, r.URL.Path, err)
					handlers.RespondInternalError(w)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal возвращает контекст с пользователем
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal возвращает пользователя из контекста
func GetPrincipal(ctx context.Context) (*identity.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*identity.Principal)
	return p, ok && p != nil
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}
