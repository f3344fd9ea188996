package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TypeDeposit     TransactionType = "DEPOSIT"
	TypeWithdraw    TransactionType = "WITHDRAW"
	TypeInterest    TransactionType = "INTEREST"
	TypeFee         TransactionType = "FEE"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
)

// Transaction is an immutable record of one balance-affecting event. It is
// only ever created inside a successful mutation; the timestamp is the clock
// reading at that moment and cannot be supplied from outside the package.
type Transaction struct {
	id           uuid.UUID
	txType       TransactionType
	amount       float64
	balanceAfter float64
	timestamp    time.Time
}

func newTransaction(txType TransactionType, amount, balanceAfter float64) Transaction {
	return Transaction{
		id:           uuid.New(),
		txType:       txType,
		amount:       amount,
		balanceAfter: balanceAfter,
		timestamp:    time.Now(),
	}
}

func (t Transaction) ID() uuid.UUID { return t.id }

func (t Transaction) Type() TransactionType { return t.txType }

// Amount is the magnitude of the event, never signed.
func (t Transaction) Amount() float64 { return t.amount }

// BalanceAfter is the owning account's balance snapshot taken right after
// the event was applied.
func (t Transaction) BalanceAfter() float64 { return t.balanceAfter }

func (t Transaction) Timestamp() time.Time { return t.timestamp }

// Delta is the signed contribution of this transaction to the balance:
// deposits, interest and incoming transfers count positive, everything
// else negative.
func (t Transaction) Delta() float64 {
	switch t.txType {
	case TypeDeposit, TypeInterest, TypeTransferIn:
		return t.amount
	default:
		return -t.amount
	}
}
