package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
)

func TestClient_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/sessions/current", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"user_id":42,"role":"client"}`))
		case "Bearer broken":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	t.Run("valid token", func(t *testing.T) {
		p, err := client.Resolve(context.Background(), "good")
		require.NoError(t, err)
		assert.Equal(t, int64(42), p.UserID)
		assert.Equal(t, RoleClient, p.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := client.Resolve(context.Background(), "expired")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := client.Resolve(context.Background(), "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := client.Resolve(context.Background(), "broken")
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}
