package get_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	getAvailability "github.com/m04kA/SMC-BeautyBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) Execute(ctx context.Context, req *getAvailability.Request) (*getAvailability.Response, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*getAvailability.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func serve(uc *MockUseCase, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/providers/{providerId}/availability", NewHandler(uc, logger.NewNop()).Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Slots(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailability.Request) bool {
		return req.ProviderID == 7 && req.DurationMinutes != nil && *req.DurationMinutes == 30 && req.ServiceID == nil
	})).Return(&getAvailability.Response{
		ProviderID:      7,
		Date:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		GridMinutes:     30,
		Timezone:        "UTC",
		Slots: []getAvailability.Slot{
			{StartTime: types.MustTimeString("09:00"), EndTime: types.MustTimeString("09:30")},
		},
	}, nil)

	rec := serve(uc, "/providers/7/availability?date=2025-01-01&durationMinutes=30")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-01-01", resp.Date)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, Slot{StartTime: "09:00", EndTime: "09:30"}, resp.Slots[0])
	uc.AssertExpectations(t)
}

func TestHandler_QueryValidation(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{name: "bad provider", target: "/providers/abc/availability?date=2025-01-01"},
		{name: "missing date", target: "/providers/7/availability"},
		{name: "bad date", target: "/providers/7/availability?date=2025-13-01"},
		{name: "bad duration", target: "/providers/7/availability?date=2025-01-01&durationMinutes=half"},
		{name: "bad service", target: "/providers/7/availability?date=2025-01-01&serviceId=-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := new(MockUseCase)

			rec := serve(uc, tc.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid", err: getAvailability.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "too far", err: getAvailability.ErrDateTooFarInFuture, status: http.StatusBadRequest},
		{name: "service not found", err: getAvailability.ErrServiceNotFound, status: http.StatusNotFound},
		{name: "catalog down", err: getAvailability.ErrCatalogUnavailable, status: http.StatusServiceUnavailable},
		{name: "internal", err: getAvailability.ErrInternal, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := new(MockUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tc.err)

			rec := serve(uc, "/providers/7/availability?date=2025-01-01&serviceId=3")

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
