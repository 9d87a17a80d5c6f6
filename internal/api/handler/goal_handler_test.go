package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nestegg/savings-ledger/internal/api/service"
	"github.com/nestegg/savings-ledger/internal/domain/goal"
)

type MockGoalService struct {
	mock.Mock
}

func (m *MockGoalService) CreateGoal(ctx context.Context, ownerID uuid.UUID, name, description string, targetAmount, initialAmount int64, targetDate *time.Time) (*goal.Goal, error) {
	args := m.Called(ctx, ownerID, name, description, targetAmount, initialAmount, targetDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.Goal), args.Error(1)
}

func (m *MockGoalService) GetGoalByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.Goal), args.Error(1)
}

func (m *MockGoalService) ListGoalsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*goal.Goal, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*goal.Goal), args.Error(1)
}

func (m *MockGoalService) UpdateGoal(ctx context.Context, id uuid.UUID, update service.GoalUpdate) (*goal.Goal, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.Goal), args.Error(1)
}

func (m *MockGoalService) SetGoalStatus(ctx context.Context, id uuid.UUID, status goal.Status) (*goal.Goal, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.Goal), args.Error(1)
}

func (m *MockGoalService) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func sampleGoal() *goal.Goal {
	now := time.Now()
	return &goal.Goal{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Name:         "Emergency fund",
		Amount:       50_000,
		TargetAmount: 600_000,
		Status:       goal.StatusActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var response Response
	require.NoError(t, json.Unmarshal(body, &response))
	require.NotNil(t, response.Data, "'data' field should not be nil")
	dataBytes, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(dataBytes, &out))
	return out
}

func TestGoalHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		g := sampleGoal()

		mockService.On("CreateGoal", mock.Anything, g.OwnerID, "Emergency fund", "", int64(600_000), int64(0), (*time.Time)(nil)).Return(g, nil)

		router := setupTestRouter()
		router.POST("/goals", handler.Create)

		jsonBody, _ := json.Marshal(CreateGoalRequest{
			OwnerID:      g.OwnerID.String(),
			Name:         "Emergency fund",
			TargetAmount: 600_000,
		})
		req, _ := http.NewRequest(http.MethodPost, "/goals", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		got := decodeData[GoalResponse](t, rr.Body.Bytes())
		assert.Equal(t, g.ID.String(), got.ID)
		assert.Equal(t, "active", got.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingName", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/goals", handler.Create)

		jsonBody, _ := json.Marshal(map[string]interface{}{
			"owner_id":      uuid.New().String(),
			"target_amount": 1000,
		})
		req, _ := http.NewRequest(http.MethodPost, "/goals", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateGoal")
	})

	t.Run("NegativeTargetAmount", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/goals", handler.Create)

		jsonBody, _ := json.Marshal(map[string]interface{}{
			"owner_id":      uuid.New().String(),
			"name":          "Car",
			"target_amount": -500,
		})
		req, _ := http.NewRequest(http.MethodPost, "/goals", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateGoal")
	})
}

func TestGoalHandler_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		g := sampleGoal()

		mockService.On("GetGoalByID", mock.Anything, g.ID).Return(g, nil)

		router := setupTestRouter()
		router.GET("/goals/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/goals/"+g.ID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[GoalResponse](t, rr.Body.Bytes())
		assert.Equal(t, g.ID.String(), got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		id := uuid.New()

		mockService.On("GetGoalByID", mock.Anything, id).Return(nil, goal.ErrGoalNotFound{GoalID: id})

		router := setupTestRouter()
		router.GET("/goals/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/goals/"+id.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/goals/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/goals/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetGoalByID")
	})
}

func TestGoalHandler_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		g := sampleGoal()

		mockService.On("ListGoalsByOwner", mock.Anything, g.OwnerID).Return([]*goal.Goal{g}, nil)

		router := setupTestRouter()
		router.GET("/goals", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/goals?owner_id="+g.OwnerID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[GoalListResponse](t, rr.Body.Bytes())
		require.Len(t, got.Goals, 1)
		assert.Equal(t, g.ID.String(), got.Goals[0].ID)
	})

	t.Run("MissingOwnerID", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/goals", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/goals", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListGoalsByOwner")
	})
}

func TestGoalHandler_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		g := sampleGoal()
		g.Name = "Renamed"

		mockService.On("UpdateGoal", mock.Anything, g.ID, mock.MatchedBy(func(u service.GoalUpdate) bool {
			return u.Name != nil && *u.Name == "Renamed"
		})).Return(g, nil)

		router := setupTestRouter()
		router.PATCH("/goals/:id", handler.Update)

		jsonBody := []byte(`{"name":"Renamed"}`)
		req, _ := http.NewRequest(http.MethodPatch, "/goals/"+g.ID.String(), bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[GoalResponse](t, rr.Body.Bytes())
		assert.Equal(t, "Renamed", got.Name)
		mockService.AssertExpectations(t)
	})

	t.Run("ConcurrentModification", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		id := uuid.New()

		mockService.On("UpdateGoal", mock.Anything, id, mock.Anything).Return(nil, goal.ErrConcurrentModification{GoalID: id})

		router := setupTestRouter()
		router.PATCH("/goals/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPatch, "/goals/"+id.String(), bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestGoalHandler_SetStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		g := sampleGoal()
		g.Status = goal.StatusAtRisk

		mockService.On("SetGoalStatus", mock.Anything, g.ID, goal.StatusAtRisk).Return(g, nil)

		router := setupTestRouter()
		router.PUT("/goals/:id/status", handler.SetStatus)

		req, _ := http.NewRequest(http.MethodPut, "/goals/"+g.ID.String()+"/status", bytes.NewBufferString(`{"status":"atRisk"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[GoalResponse](t, rr.Body.Bytes())
		assert.Equal(t, "atRisk", got.Status)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		id := uuid.New()

		router := setupTestRouter()
		router.PUT("/goals/:id/status", handler.SetStatus)

		req, _ := http.NewRequest(http.MethodPut, "/goals/"+id.String()+"/status", bytes.NewBufferString(`{"status":"frozen"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SetGoalStatus")
	})
}

func TestGoalHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		id := uuid.New()

		mockService.On("DeleteGoal", mock.Anything, id).Return(nil)

		router := setupTestRouter()
		router.DELETE("/goals/:id", handler.Delete)

		req, _ := http.NewRequest(http.MethodDelete, "/goals/"+id.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockGoalService)
		handler := NewGoalHandler(testLogger(), mockService)
		id := uuid.New()

		mockService.On("DeleteGoal", mock.Anything, id).Return(goal.ErrGoalNotFound{GoalID: id})

		router := setupTestRouter()
		router.DELETE("/goals/:id", handler.Delete)

		req, _ := http.NewRequest(http.MethodDelete, "/goals/"+id.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
