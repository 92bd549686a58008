package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
)

func TestClient_GetService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/services/3":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":3,"provider_id":7,"name":"Haircut","duration_minutes":45,"is_active":true}`))
		case "/internal/services/9":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	t.Run("ok", func(t *testing.T) {
		service, err := client.GetService(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, 45, service.DurationMinutes)
		assert.Equal(t, int64(7), service.ProviderID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := client.GetService(context.Background(), 9)
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.GetService(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	for i := 0; i < 5; i++ {
		_, err := client.GetService(context.Background(), 1)
		require.ErrorIs(t, err, ErrInvalidResponse)
	}

	_, err := client.GetService(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	for i := 0; i < 10; i++ {
		_, err := client.GetService(context.Background(), 1)
		require.ErrorIs(t, err, ErrServiceNotFound)
	}
}
