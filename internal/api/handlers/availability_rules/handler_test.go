package availability_rules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-BeautyBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListRules(ctx context.Context, providerID int64) (*models.RuleListResponse, error) {
	args := m.Called(ctx, providerID)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.RuleListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.RuleResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) UpdateRule(ctx context.Context, req *models.UpdateRuleRequest) (*models.RuleResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.RuleResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) DeleteRule(ctx context.Context, userID, providerID, ruleID int64) error {
	args := m.Called(ctx, userID, providerID, ruleID)
	return args.Error(0)
}

func newRouter(svc *MockService) *mux.Router {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/providers/{providerId}/rules", h.List).Methods(http.MethodGet)
	r.HandleFunc("/providers/{providerId}/rules", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/providers/{providerId}/rules/{ruleId}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/providers/{providerId}/rules/{ruleId}", h.Delete).Methods(http.MethodDelete)
	return r
}

func serve(r http.Handler, method, path, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != 0 {
		req = req.WithContext(middleware.WithPrincipal(req.Context(),
			&identity.Principal{UserID: userID, Role: identity.RoleProvider}))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	svc.On("ListRules", mock.Anything, int64(7)).Return(&models.RuleListResponse{Rules: []models.RuleResponse{{ID: 1}}}, nil)

	rec := serve(newRouter(svc), http.MethodGet, "/providers/7/rules", "", 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
}

func TestHandler_CreateFillsOwner(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateRule", mock.Anything, mock.MatchedBy(func(req *models.CreateRuleRequest) bool {
		return req.UserID == 7 && req.ProviderID == 7
	})).Return(&models.RuleResponse{ID: 5}, nil)

	body := `{"dayOfWeek":3,"startTime":"09:00","endTime":"17:00"}`
	rec := serve(newRouter(svc), http.MethodPost, "/providers/7/rules", body, 7)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "overlap", err: availability.ErrRuleOverlap, status: http.StatusConflict},
		{name: "not found", err: availability.ErrRuleNotFound, status: http.StatusNotFound},
		{name: "denied", err: availability.ErrAccessDenied, status: http.StatusForbidden},
		{name: "invalid", err: availability.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "internal", err: assert.AnError, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("DeleteRule", mock.Anything, int64(7), int64(7), int64(3)).Return(tc.err)

			rec := serve(newRouter(svc), http.MethodDelete, "/providers/7/rules/3", "", 7)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestHandler_DeleteWithoutPrincipal(t *testing.T) {
	svc := new(MockService)

	rec := serve(newRouter(svc), http.MethodDelete, "/providers/7/rules/3", "", 0)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "DeleteRule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
