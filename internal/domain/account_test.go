package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/errors"
)

// sumDeltas recomputes the balance from the recorded history.
func sumDeltas(initial float64, history []Transaction) float64 {
	total := initial
	for _, tx := range history {
		total += tx.Delta()
	}
	return total
}

func TestSavingsAccount_DepositAndWithdraw(t *testing.T) {
	acc := NewSavingsAccount("SA-1001", 200.0, 0.018, nil)

	require.NoError(t, acc.Deposit(50))
	assert.Equal(t, 250.0, acc.Balance())

	history := acc.History()
	require.Len(t, history, 1)
	assert.Equal(t, TypeDeposit, history[0].Type())
	assert.Equal(t, 50.0, history[0].Amount())
	assert.Equal(t, 250.0, history[0].BalanceAfter())
	assert.False(t, history[0].Timestamp().IsZero())

	require.NoError(t, acc.Withdraw(20))
	assert.Equal(t, 230.0, acc.Balance())
	assert.Len(t, acc.History(), 2)
}

func TestAccount_RejectsNonPositiveAmounts(t *testing.T) {
	acc := NewSavingsAccount("SA-1", 100.0, 0.01, nil)

	for _, amount := range []float64{0, -5} {
		assert.ErrorIs(t, acc.Deposit(amount), errors.ErrInvalidAmount)
		assert.ErrorIs(t, acc.Withdraw(amount), errors.ErrInvalidAmount)
	}

	assert.Equal(t, 100.0, acc.Balance())
	assert.Empty(t, acc.History())
}

func TestSavingsAccount_NoOverdraft(t *testing.T) {
	acc := NewSavingsAccount("SA-2", 100.0, 0.01, nil)

	require.NoError(t, acc.Withdraw(30))
	assert.Equal(t, 70.0, acc.Balance())
	require.NoError(t, acc.Withdraw(70))
	assert.Equal(t, 0.0, acc.Balance())

	err := acc.Withdraw(10)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewAppError(errors.BusinessRuleViolation, ""))
	assert.Equal(t, 0.0, acc.Balance(), "failed withdrawal must not touch the balance")
	assert.Len(t, acc.History(), 2, "failed withdrawal must not record anything")
}

func TestCreditAccount_OverdraftWithinLimit(t *testing.T) {
	acc := NewCreditAccount("CA-9001", 0.0, 500.0, nil)

	require.NoError(t, acc.Withdraw(100))
	assert.Equal(t, -100.0, acc.Balance())

	err := acc.Withdraw(500)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewAppError(errors.BusinessRuleViolation, ""))
	assert.Equal(t, -100.0, acc.Balance())
}

func TestCreditAccount_ExactFloorAllowed(t *testing.T) {
	acc := NewCreditAccount("CA-1", 50.0, 500.0, nil)

	require.NoError(t, acc.Withdraw(550))
	assert.Equal(t, -500.0, acc.Balance())

	assert.Error(t, acc.Withdraw(1))
	assert.Equal(t, -500.0, acc.Balance())
}

func TestCreditAccount_FeeCountsTowardFloor(t *testing.T) {
	acc := NewCreditAccount("CA-2", 0.0, 100.0, nil)
	acc.SetFeePolicy(NewFixedFeePolicy(10))

	// 95 + 10 fee would land at -105, below the -100 floor.
	err := acc.Withdraw(95)
	require.Error(t, err)
	assert.Equal(t, 0.0, acc.Balance())
	assert.Empty(t, acc.History())

	// 90 + 10 fee lands exactly on the floor.
	require.NoError(t, acc.Withdraw(90))
	assert.Equal(t, -100.0, acc.Balance())
}

func TestWithdraw_FeeRecordsTwoTransactions(t *testing.T) {
	acc := NewSavingsAccount("SA-3", 1000.0, 0.01, nil)
	acc.SetFeePolicy(NewFixedFeePolicy(5))

	require.NoError(t, acc.Withdraw(100))

	assert.Equal(t, 895.0, acc.Balance())
	history := acc.History()
	require.Len(t, history, 2)
	assert.Equal(t, TypeWithdraw, history[0].Type())
	assert.Equal(t, 100.0, history[0].Amount())
	assert.Equal(t, 900.0, history[0].BalanceAfter())
	assert.Equal(t, TypeFee, history[1].Type())
	assert.Equal(t, 5.0, history[1].Amount())
	assert.Equal(t, 895.0, history[1].BalanceAfter())
}

func TestFeePolicy_SwapAffectsOnlyFutureWithdrawals(t *testing.T) {
	acc := NewSavingsAccount("SA-4", 1000.0, 0.01, nil)

	require.NoError(t, acc.Withdraw(100))
	assert.Len(t, acc.History(), 1, "no fee before the policy swap")

	acc.SetFeePolicy(NewPercentageFeePolicy(0.25))
	require.NoError(t, acc.Withdraw(100))

	history := acc.History()
	require.Len(t, history, 3)
	assert.Equal(t, TypeFee, history[2].Type())
	assert.Equal(t, 25.0, history[2].Amount())
	assert.Equal(t, 775.0, acc.Balance())
}

func TestBalanceInvariant(t *testing.T) {
	acc := NewCreditAccount("CA-3", 250.0, 1000.0, nil)
	acc.SetFeePolicy(NewPercentageFeePolicy(0.25))

	ops := []func() error{
		func() error { return acc.Deposit(100) },
		func() error { return acc.Withdraw(400) },
		func() error { return acc.Withdraw(10000) }, // rejected
		func() error { return acc.Deposit(25) },
		func() error { return acc.Withdraw(50) },
		func() error { return acc.Deposit(-1) }, // rejected
	}
	for _, op := range ops {
		_ = op()
		assert.Equal(t, sumDeltas(250.0, acc.History()), acc.Balance(),
			"balance must equal initial plus the sum of history deltas")
	}
}

func TestSavingsAccount_ApplyInterest(t *testing.T) {
	acc := NewSavingsAccount("SA-5", 200.0, 0.05, nil)

	require.NoError(t, acc.ApplyInterest())

	assert.InDelta(t, 210.0, acc.Balance(), 1e-9)
	history := acc.History()
	require.Len(t, history, 1)
	assert.Equal(t, TypeInterest, history[0].Type())
	assert.InDelta(t, 10.0, history[0].Amount(), 1e-9)
	assert.InDelta(t, 10.0, acc.TotalInterestEarned(), 1e-9)
}

func TestSavingsAccount_NegativeInterestRejected(t *testing.T) {
	// A negative rate is not validated at construction; accrual refuses it.
	acc := NewSavingsAccount("SA-6", 200.0, -0.05, nil)

	err := acc.ApplyInterest()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewAppError(errors.BusinessRuleViolation, ""))
	assert.Equal(t, 200.0, acc.Balance())
	assert.Empty(t, acc.History())
}

func TestBusinessAccount_InterestOnlyOnPositiveBalance(t *testing.T) {
	t.Run("positive balance accrues", func(t *testing.T) {
		acc := NewBusinessAccount("BA-1", 400.0, 500.0, 0.05, "PREMIUM", nil)

		require.NoError(t, acc.ApplyInterest())
		assert.InDelta(t, 420.0, acc.Balance(), 1e-9)
		assert.Len(t, acc.History(), 1)
	})

	t.Run("negative balance skips silently", func(t *testing.T) {
		acc := NewBusinessAccount("BA-2", -100.0, 500.0, 0.05, "PREMIUM", nil)

		require.NoError(t, acc.ApplyInterest())
		assert.Equal(t, -100.0, acc.Balance())
		assert.Empty(t, acc.History(), "skipped accrual records nothing")
	})
}

func TestCreditAccount_HasNoInterestOperation(t *testing.T) {
	acc := NewCreditAccount("CA-4", 100.0, 500.0, nil)

	err := acc.ApplyInterest()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewAppError(errors.BusinessRuleViolation, ""))
	assert.Equal(t, 100.0, acc.Balance())
}

func TestHistory_IsDefensiveCopy(t *testing.T) {
	acc := NewSavingsAccount("SA-7", 100.0, 0.01, nil)
	require.NoError(t, acc.Deposit(10))

	history := acc.History()
	history[0] = Transaction{}

	fresh := acc.History()
	assert.Equal(t, TypeDeposit, fresh[0].Type(), "mutating the snapshot must not touch the account")
}

func TestFindByType(t *testing.T) {
	acc := NewSavingsAccount("SA-8", 100.0, 0.01, nil)
	acc.SetFeePolicy(NewFixedFeePolicy(1))
	require.NoError(t, acc.Deposit(50))
	require.NoError(t, acc.Withdraw(20))

	assert.Len(t, acc.FindByType(TypeDeposit), 1)
	assert.Len(t, acc.FindByType(TypeWithdraw), 1)
	assert.Len(t, acc.FindByType(TypeFee), 1)
	assert.Empty(t, acc.FindByType(TypeInterest))
}

func TestFindByDateRange(t *testing.T) {
	acc := NewSavingsAccount("SA-9", 100.0, 0.01, nil)
	before := time.Now().Add(-time.Minute)
	require.NoError(t, acc.Deposit(50))
	after := time.Now().Add(time.Minute)

	assert.Len(t, acc.FindByDateRange(before, after), 1)
	assert.Empty(t, acc.FindByDateRange(after, after.Add(time.Hour)))
	assert.Empty(t, acc.FindByDateRange(before.Add(-time.Hour), before))
}
