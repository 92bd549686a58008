package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/pkg/bookingclient"
)

func runBook(t *testing.T, handler http.HandlerFunc) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := &options{
		baseURL:         srv.URL,
		providerID:      7,
		date:            "2025-01-01",
		durationMinutes: 60,
		requestTimeout:  time.Second,
	}
	cmd := bookCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--service", "3", "--time", "14:00"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return out.String(), err
}

func TestBook_UnauthenticatedPrintsPendingBooking(t *testing.T) {
	out, err := runBook(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.ErrorIs(t, err, bookingclient.ErrUnauthenticated)
	assert.Contains(t, out, "booking was not sent: provider=7 service=3 2025-01-01 14:00 (60m)")
	assert.Contains(t, out, "availability-watch book --provider 7 --date 2025-01-01 --duration 60 --service 3 --time 14:00")
}

func TestBook_ConflictPrintsFreshMap(t *testing.T) {
	out, err := runBook(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"busy","reason":"already-booked"}`))
			return
		}
		_, _ = w.Write([]byte(`{"providerId":7,"date":"2025-01-01","durationMinutes":60,"slots":[
			{"startTime":"14:00","endTime":"15:00","available":false,"reason":"already-booked","conflictsWith":[5]},
			{"startTime":"15:00","endTime":"16:00","available":true}]}`))
	})

	conflict, ok := bookingclient.IsConflict(err)
	require.True(t, ok)
	assert.Equal(t, bookingclient.ReasonAlreadyBooked, conflict.Reason)
	assert.Contains(t, out, "slot 14:00 is not available: already-booked")
	assert.Contains(t, out, "conflicts 2025-01-01: 1/2 available")
}
