package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepStateRepository_TryAcquire(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &SweepStateRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()
	minInterval := 15 * time.Minute

	query := `
		UPDATE sweep_state
		SET last_run_at = \$1
		WHERE id = 1 AND last_run_at <= \$2
	`

	t.Run("acquired", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(now, now.Add(-minInterval)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		acquired, err := repo.TryAcquire(ctx, now, minInterval)
		assert.NoError(t, err)
		assert.True(t, acquired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("interval not elapsed", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(now, now.Add(-minInterval)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		acquired, err := repo.TryAcquire(ctx, now, minInterval)
		assert.NoError(t, err)
		assert.False(t, acquired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(now, now.Add(-minInterval)).
			WillReturnError(expectedErr)

		acquired, err := repo.TryAcquire(ctx, now, minInterval)
		assert.False(t, acquired)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSweepStateRepository_LastRun(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &SweepStateRepository{querier: mock, logger: newTestLogger()}

	query := `
		SELECT last_run_at
		FROM sweep_state
		WHERE id = 1
	`

	t.Run("success", func(t *testing.T) {
		lastRun := time.Now().Add(-time.Hour)
		mock.ExpectQuery(query).
			WillReturnRows(pgxmock.NewRows([]string{"last_run_at"}).AddRow(lastRun))

		got, err := repo.LastRun(ctx)
		assert.NoError(t, err)
		assert.Equal(t, lastRun, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectQuery(query).
			WillReturnRows(pgxmock.NewRows([]string{"last_run_at"}))

		_, err := repo.LastRun(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "migrations not applied")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
