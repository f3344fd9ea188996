// Package audit provides an AccountObserver that writes one structured log
// record per recorded transaction.
package audit

import (
	"log/slog"

	"bank-ledger/internal/domain"
)

type Auditor struct {
	logger *slog.Logger
}

func NewAuditor(logger *slog.Logger) *Auditor {
	return &Auditor{logger: logger}
}

func (a *Auditor) OnTransaction(acc *domain.Account, tx domain.Transaction) {
	a.logger.Info("audit",
		"account_id", acc.ID(),
		"transaction_id", tx.ID(),
		"type", tx.Type(),
		"amount", tx.Amount(),
		"balance_after", tx.BalanceAfter(),
		"timestamp", tx.Timestamp(),
	)
}
