package domain

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/errors"
)

func newTestBank(t *testing.T, accounts ...*Account) *Bank {
	t.Helper()
	bank := NewBank(nil)
	for _, acc := range accounts {
		require.NoError(t, bank.AddAccount(acc))
	}
	return bank
}

func TestBank_AddAccount(t *testing.T) {
	bank := NewBank(nil)

	require.NoError(t, bank.AddAccount(NewSavingsAccount("SA-1", 100, 0.01, nil)))
	assert.ErrorIs(t, bank.AddAccount(NewCreditAccount("SA-1", 0, 500, nil)), errors.ErrDuplicateAccount)

	_, err := bank.Account("SA-1")
	assert.NoError(t, err)
	_, err = bank.Account("missing")
	assert.ErrorIs(t, err, errors.ErrUnknownAccount)
}

func TestBank_AccountsPreserveInsertionOrder(t *testing.T) {
	bank := newTestBank(t,
		NewSavingsAccount("SA-1", 100, 0.01, nil),
		NewCreditAccount("CA-1", 0, 500, nil),
		NewBusinessAccount("BA-1", 1000, 500, 0.02, "GOLD", nil),
	)

	var ids []string
	for _, acc := range bank.Accounts() {
		ids = append(ids, acc.ID())
	}
	assert.Equal(t, []string{"SA-1", "CA-1", "BA-1"}, ids)
}

func TestBank_SuccessfulTransfer(t *testing.T) {
	from := NewSavingsAccount("SA-1", 200.0, 0.01, nil)
	to := NewCreditAccount("CA-1", 100.0, 500.0, nil)
	bank := newTestBank(t, from, to)

	require.NoError(t, bank.Transfer("SA-1", "CA-1", 50))

	assert.Equal(t, 150.0, from.Balance())
	assert.Equal(t, 150.0, to.Balance())

	require.Len(t, from.FindByType(TypeTransferOut), 1)
	require.Len(t, to.FindByType(TypeTransferIn), 1)
	assert.Empty(t, from.FindByType(TypeWithdraw), "transfer legs are not plain withdrawals")
	assert.Empty(t, to.FindByType(TypeDeposit))
	assert.Equal(t, 150.0, from.FindByType(TypeTransferOut)[0].BalanceAfter())
}

func TestBank_TransferValidation(t *testing.T) {
	from := NewSavingsAccount("SA-1", 200.0, 0.01, nil)
	bank := newTestBank(t, from, NewCreditAccount("CA-1", 0, 500, nil))

	t.Run("same account", func(t *testing.T) {
		assert.ErrorIs(t, bank.Transfer("SA-1", "SA-1", 10), errors.ErrSameAccountTransfer)
	})
	t.Run("non-positive amount", func(t *testing.T) {
		assert.ErrorIs(t, bank.Transfer("SA-1", "CA-1", 0), errors.ErrInvalidAmount)
		assert.ErrorIs(t, bank.Transfer("SA-1", "CA-1", -5), errors.ErrInvalidAmount)
	})
	t.Run("unknown accounts", func(t *testing.T) {
		assert.ErrorIs(t, bank.Transfer("SA-1", "missing", 10), errors.ErrUnknownAccount)
		assert.ErrorIs(t, bank.Transfer("missing", "CA-1", 10), errors.ErrUnknownAccount)
	})

	assert.Equal(t, 200.0, from.Balance())
	assert.Empty(t, from.History(), "rejected transfers leave no trace")
}

func TestBank_FailedTransferRollsBack(t *testing.T) {
	from := NewSavingsAccount("SA-2", 50.0, 0.01, nil)
	to := NewCreditAccount("CA-2", 100.0, 500.0, nil)
	bank := newTestBank(t, from, to)

	err := bank.Transfer("SA-2", "CA-2", 100)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.TransferFailed, appErr.Code)

	// The wrapped cause is the savings overdraft rule.
	var cause *errors.AppError
	require.ErrorAs(t, stderrors.Unwrap(appErr), &cause)
	assert.Equal(t, errors.BusinessRuleViolation, cause.Code)

	assert.Equal(t, 50.0, from.Balance())
	assert.Equal(t, 100.0, to.Balance())
	assert.Empty(t, from.History())
	assert.Empty(t, to.History())
}

func TestBank_RollbackKeepsHistoryConsistent(t *testing.T) {
	// A fee policy on the source makes the out leg multi-step; the rollback
	// contract is that a failed transfer leaves history exactly as long as
	// before, so the balance/history invariant holds afterwards.
	from := NewCreditAccount("CA-3", 0.0, 100.0, nil)
	from.SetFeePolicy(NewFixedFeePolicy(10))
	to := NewSavingsAccount("SA-3", 0.0, 0.01, nil)
	bank := newTestBank(t, from, to)

	require.NoError(t, bank.Transfer("CA-3", "SA-3", 50))
	require.Len(t, from.History(), 2) // TRANSFER_OUT + FEE
	preFrom, preTo := len(from.History()), len(to.History())

	// 50 already drawn plus 10 fee leaves headroom of 40: this must fail.
	err := bank.Transfer("CA-3", "SA-3", 50)
	require.Error(t, err)

	assert.Len(t, from.History(), preFrom)
	assert.Len(t, to.History(), preTo)
	assert.Equal(t, sumDeltas(0.0, from.History()), from.Balance())
	assert.Equal(t, sumDeltas(0.0, to.History()), to.Balance())
}

func TestBank_TransferWithFee(t *testing.T) {
	from := NewSavingsAccount("SA-4", 1000.0, 0.01, nil)
	from.SetFeePolicy(NewFixedFeePolicy(5))
	to := NewSavingsAccount("SA-5", 0.0, 0.01, nil)
	bank := newTestBank(t, from, to)

	require.NoError(t, bank.Transfer("SA-4", "SA-5", 100))

	assert.Equal(t, 895.0, from.Balance())
	assert.Equal(t, 100.0, to.Balance())

	history := from.History()
	require.Len(t, history, 2)
	assert.Equal(t, TypeTransferOut, history[0].Type())
	assert.Equal(t, TypeFee, history[1].Type())
}
