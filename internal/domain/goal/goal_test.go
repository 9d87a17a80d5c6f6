package goal

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoal(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		ownerID := uuid.New()
		targetDate := time.Now().AddDate(0, 6, 0)

		beforeCreation := time.Now()
		g, err := NewGoal(ownerID, "Emergency fund", "Six months of expenses", 600_000, 0, &targetDate)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, g)

		assert.NotEqual(t, uuid.Nil, g.ID, "Goal ID should not be nil")
		assert.Equal(t, ownerID, g.OwnerID)
		assert.Equal(t, "Emergency fund", g.Name)
		assert.Equal(t, int64(0), g.Amount)
		assert.Equal(t, int64(600_000), g.TargetAmount)
		assert.Equal(t, StatusActive, g.Status, "A fresh goal with a future deadline starts active")
		assert.Equal(t, 1, g.Version, "Initial version should be 1")
		assert.WithinDuration(t, beforeCreation, g.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
	})

	t.Run("InitialAmountMeetingTargetIsCompleted", func(t *testing.T) {
		g, err := NewGoal(uuid.New(), "Holiday", "", 50_000, 50_000, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, g.Status)
	})

	t.Run("NoTargetIsCompleted", func(t *testing.T) {
		g, err := NewGoal(uuid.New(), "Loose change", "", 0, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, g.Status)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewGoal(uuid.New(), "", "", 1000, 0, nil)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("NegativeInitialAmount", func(t *testing.T) {
		_, err := NewGoal(uuid.New(), "Car", "", 1000, -1, nil)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("NegativeTargetAmount", func(t *testing.T) {
		_, err := NewGoal(uuid.New(), "Car", "", -1000, 0, nil)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestGoal_Deposit(t *testing.T) {
	t.Run("SuccessfulDeposit", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		initialVersion := g.Version

		err := g.Deposit(2000)

		require.NoError(t, err)
		assert.Equal(t, int64(7000), g.Amount)
		assert.Equal(t, initialVersion+1, g.Version)
		assert.True(t, g.UpdatedAt.After(g.CreatedAt), "UpdatedAt should move forward on deposit")
	})

	t.Run("DepositReachingTargetCompletes", func(t *testing.T) {
		g := testGoal(90_000, 100_000)

		err := g.Deposit(10_000)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, g.Status)
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		err := g.Deposit(0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, int64(5000), g.Amount, "Balance must be untouched on rejection")
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		err := g.Deposit(-100)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestGoal_Withdraw(t *testing.T) {
	t.Run("SuccessfulWithdrawal", func(t *testing.T) {
		g := testGoal(10_000, 100_000)
		initialVersion := g.Version

		err := g.Withdraw(3000)

		require.NoError(t, err)
		assert.Equal(t, int64(7000), g.Amount)
		assert.Equal(t, initialVersion+1, g.Version)
	})

	t.Run("WithdrawFullBalance", func(t *testing.T) {
		g := testGoal(10_000, 100_000)
		err := g.Withdraw(10_000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), g.Amount)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		g := testGoal(1000, 100_000)

		err := g.Withdraw(1001)

		require.Error(t, err)
		var insufficient ErrInsufficientFunds
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, g.ID, insufficient.GoalID)
		assert.Equal(t, int64(1001), insufficient.Requested)
		assert.Equal(t, int64(1000), insufficient.Available)
		assert.Equal(t, int64(1000), g.Amount, "Balance must be untouched on rejection")
	})

	t.Run("WithdrawalLosingCompletedStatus", func(t *testing.T) {
		g := testGoal(100_000, 100_000)
		g.Status = StatusCompleted

		err := g.Withdraw(50_000)

		require.NoError(t, err)
		assert.NotEqual(t, StatusCompleted, g.Status)
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		g := testGoal(1000, 100_000)
		err := g.Withdraw(0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestGoal_BalanceTracksEntrySums(t *testing.T) {
	g := testGoal(0, 500_000)

	steps := []struct {
		op       string
		amount   int64
		rejected bool
	}{
		{op: "deposit", amount: 120_000},
		{op: "withdraw", amount: 20_000},
		{op: "deposit", amount: 50_000},
		{op: "withdraw", amount: 300_000, rejected: true},
		{op: "withdraw", amount: 150_000},
		{op: "deposit", amount: 75_000},
	}

	var deposits, withdrawals int64
	for _, step := range steps {
		var err error
		switch step.op {
		case "deposit":
			err = g.Deposit(step.amount)
			if err == nil {
				deposits += step.amount
			}
		case "withdraw":
			err = g.Withdraw(step.amount)
			if err == nil {
				withdrawals += step.amount
			}
		}

		if step.rejected {
			require.ErrorIs(t, err, ErrInsufficientFunds{}, "overdraw of %d must be rejected", step.amount)
		} else {
			require.NoError(t, err, "%s of %d", step.op, step.amount)
		}

		assert.Equal(t, deposits-withdrawals, g.Amount,
			"balance must equal deposits minus withdrawals after each %s", step.op)
	}

	assert.Equal(t, int64(75_000), g.Amount)
	assert.Equal(t, 1+5, g.Version, "only applied operations bump the version")
}

func TestGoal_SetStatus(t *testing.T) {
	t.Run("Override", func(t *testing.T) {
		g := testGoal(0, 100_000)
		initialVersion := g.Version

		err := g.SetStatus(StatusAtRisk)

		require.NoError(t, err)
		assert.Equal(t, StatusAtRisk, g.Status)
		assert.Equal(t, initialVersion+1, g.Version)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		g := testGoal(0, 100_000)
		err := g.SetStatus(Status("frozen"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestGoal_UpdateDetails(t *testing.T) {
	t.Run("PartialUpdate", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		name := "Renamed"

		err := g.UpdateDetails(&name, nil, nil, nil, false)

		require.NoError(t, err)
		assert.Equal(t, "Renamed", g.Name)
		assert.Equal(t, int64(100_000), g.TargetAmount, "Absent fields stay unchanged")
	})

	t.Run("LoweringTargetCompletes", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		target := int64(5000)

		err := g.UpdateDetails(nil, nil, &target, nil, false)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, g.Status)
	})

	t.Run("ClearTargetDate", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		date := time.Now().AddDate(0, 1, 0)
		g.TargetDate = &date

		err := g.UpdateDetails(nil, nil, nil, nil, true)

		require.NoError(t, err)
		assert.Nil(t, g.TargetDate)
	})

	t.Run("EmptyName", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		name := ""
		err := g.UpdateDetails(&name, nil, nil, nil, false)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("NegativeTarget", func(t *testing.T) {
		g := testGoal(5000, 100_000)
		target := int64(-1)
		err := g.UpdateDetails(nil, nil, &target, nil, false)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestGoal_CanWithdraw(t *testing.T) {
	g := testGoal(1000, 100_000)
	assert.True(t, g.CanWithdraw(500))
	assert.True(t, g.CanWithdraw(1000))
	assert.False(t, g.CanWithdraw(1001))
}

func TestErrInsufficientFunds_Is(t *testing.T) {
	id := uuid.New()
	err := ErrInsufficientFunds{GoalID: id, Requested: 10, Available: 5}

	assert.ErrorIs(t, err, ErrInsufficientFunds{})
	assert.ErrorIs(t, err, ErrInsufficientFunds{GoalID: id})
	assert.NotErrorIs(t, err, ErrInsufficientFunds{GoalID: uuid.New()})
}

func testGoal(amount, target int64) *Goal {
	now := time.Now().Add(-time.Hour)
	return &Goal{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Name:         "Test goal",
		Amount:       amount,
		TargetAmount: target,
		Status:       StatusActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
