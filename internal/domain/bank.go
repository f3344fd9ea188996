package domain

import (
	"io"
	"log/slog"

	"bank-ledger/internal/errors"
)

// Bank is a registry of accounts keyed by identifier. Enumeration preserves
// insertion order. The bank never reaches into an account's state except
// through its operations, with one exception: rolling back a failed
// transfer.
type Bank struct {
	accounts map[string]*Account
	order    []string
	logger   *slog.Logger
}

func NewBank(logger *slog.Logger) *Bank {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bank{
		accounts: make(map[string]*Account),
		logger:   logger,
	}
}

func (b *Bank) AddAccount(a *Account) error {
	if _, exists := b.accounts[a.ID()]; exists {
		return errors.ErrDuplicateAccount
	}
	b.accounts[a.ID()] = a
	b.order = append(b.order, a.ID())
	return nil
}

func (b *Bank) Account(id string) (*Account, error) {
	a, ok := b.accounts[id]
	if !ok {
		return nil, errors.ErrUnknownAccount
	}
	return a, nil
}

// Accounts returns the registered accounts in insertion order.
func (b *Bank) Accounts() []*Account {
	out := make([]*Account, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.accounts[id])
	}
	return out
}

// Transfer atomically moves amount from one account to another. The legs are
// recorded as TRANSFER_OUT on the source and TRANSFER_IN on the destination
// (a fee on the source still posts as FEE). If either leg fails, both
// accounts are rewound to their pre-transfer balances and history lengths
// and a transfer_failed error wrapping the cause is returned. Validation
// failures before the legs run leave everything untouched.
func (b *Bank) Transfer(fromID, toID string, amount float64) error {
	if fromID == toID {
		return errors.ErrSameAccountTransfer
	}
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}

	from, err := b.Account(fromID)
	if err != nil {
		return err
	}
	to, err := b.Account(toID)
	if err != nil {
		return err
	}

	// Snapshot for rollback. History lengths are part of the snapshot so a
	// partially-recorded leg cannot leave spurious entries behind.
	fromBalance, fromHistory := from.balance, len(from.history)
	toBalance, toHistory := to.balance, len(to.history)

	if err := from.withdraw(amount, TypeTransferOut); err != nil {
		b.rollback(from, fromBalance, fromHistory, to, toBalance, toHistory)
		b.logger.Error("transfer failed",
			"from", fromID, "to", toID, "amount", amount, "error", err)
		return errors.NewAppError(errors.TransferFailed, "transfer could not be completed").WithCause(err)
	}
	if err := to.deposit(amount, TypeTransferIn); err != nil {
		b.rollback(from, fromBalance, fromHistory, to, toBalance, toHistory)
		b.logger.Error("transfer failed",
			"from", fromID, "to", toID, "amount", amount, "error", err)
		return errors.NewAppError(errors.TransferFailed, "transfer could not be completed").WithCause(err)
	}

	b.logger.Info("transfer completed", "from", fromID, "to", toID, "amount", amount)
	return nil
}

func (b *Bank) rollback(from *Account, fromBalance float64, fromHistory int, to *Account, toBalance float64, toHistory int) {
	from.restore(fromBalance, fromHistory)
	to.restore(toBalance, toHistory)
}
