package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nestegg/savings-ledger/internal/sweeper"
)

type MockSweepRunner struct {
	mock.Mock
}

func (m *MockSweepRunner) TryRun(ctx context.Context) (sweeper.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(sweeper.Result), args.Error(1)
}

func TestSweepHandler_Run(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRunner := new(MockSweepRunner)
		handler := NewSweepHandler(testLogger(), mockRunner)

		mockRunner.On("TryRun", mock.Anything).Return(sweeper.Result{Examined: 12, Transitioned: 3}, nil)

		router := setupTestRouter()
		router.POST("/sweep", handler.Run)

		req, _ := http.NewRequest(http.MethodPost, "/sweep", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[SweepResponse](t, rr.Body.Bytes())
		assert.False(t, got.Skipped)
		assert.Equal(t, 12, got.Examined)
		assert.Equal(t, 3, got.Transitioned)
		assert.Equal(t, 0, got.Failed)
		mockRunner.AssertExpectations(t)
	})

	t.Run("RateLimited", func(t *testing.T) {
		mockRunner := new(MockSweepRunner)
		handler := NewSweepHandler(testLogger(), mockRunner)

		previousRun := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
		mockRunner.On("TryRun", mock.Anything).Return(sweeper.Result{Skipped: true, LastRun: previousRun}, nil)

		router := setupTestRouter()
		router.POST("/sweep", handler.Run)

		req, _ := http.NewRequest(http.MethodPost, "/sweep", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[SweepResponse](t, rr.Body.Bytes())
		assert.True(t, got.Skipped)
		assert.Equal(t, 0, got.Examined)
		if assert.NotNil(t, got.LastRun) {
			assert.True(t, got.LastRun.Equal(previousRun))
		}
	})

	t.Run("CompletedSweepOmitsLastRun", func(t *testing.T) {
		mockRunner := new(MockSweepRunner)
		handler := NewSweepHandler(testLogger(), mockRunner)

		mockRunner.On("TryRun", mock.Anything).Return(sweeper.Result{Examined: 2}, nil)

		router := setupTestRouter()
		router.POST("/sweep", handler.Run)

		req, _ := http.NewRequest(http.MethodPost, "/sweep", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeData[SweepResponse](t, rr.Body.Bytes())
		assert.Nil(t, got.LastRun)
	})

	t.Run("RunnerError", func(t *testing.T) {
		mockRunner := new(MockSweepRunner)
		handler := NewSweepHandler(testLogger(), mockRunner)

		mockRunner.On("TryRun", mock.Anything).Return(sweeper.Result{}, errors.New("state store unreachable"))

		router := setupTestRouter()
		router.POST("/sweep", handler.Run)

		req, _ := http.NewRequest(http.MethodPost, "/sweep", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
