package repository

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// BankSerializer converts a bank registry to and from its flat text
// representation.
type BankSerializer interface {
	Serialize(bank *domain.Bank) (string, error)
	Deserialize(data string) (*domain.Bank, error)
}

const (
	separator         = ";"
	accountPrefix     = "ACCOUNT"
	transactionPrefix = "TRANSACTION"
)

// TextBankSerializer implements the line-oriented, semicolon-delimited
// format:
//
//	ACCOUNT;<KIND>;<id>;<balance>;<kind-specific-param>
//	TRANSACTION;<accountId>;<type>;<amount>;<balanceAfter>;<timestamp>
//
// The kind-specific parameter is the interest rate for SAVINGS, the credit
// limit for CREDIT and the tier for BUSINESS. Known limitation, load-bearing
// for callers: deserialization rebuilds accounts from their ACCOUNT lines
// only. TRANSACTION lines are written for the audit trail and validated for
// shape on the way back in, but never replayed, so history does not survive
// a save/load cycle; a BUSINESS account additionally loses its credit limit
// and interest rate, which the format has no column for.
type TextBankSerializer struct {
	logger *slog.Logger
}

func NewTextBankSerializer(logger *slog.Logger) *TextBankSerializer {
	return &TextBankSerializer{logger: logger}
}

func (s *TextBankSerializer) Serialize(bank *domain.Bank) (string, error) {
	var sb strings.Builder
	for _, acc := range bank.Accounts() {
		param, err := kindParam(acc)
		if err != nil {
			return "", err
		}
		sb.WriteString(strings.Join([]string{
			accountPrefix,
			string(acc.Kind()),
			acc.ID(),
			formatAmount(acc.Balance()),
			param,
		}, separator))
		sb.WriteString("\n")

		for _, tx := range acc.History() {
			sb.WriteString(strings.Join([]string{
				transactionPrefix,
				acc.ID(),
				string(tx.Type()),
				formatAmount(tx.Amount()),
				formatAmount(tx.BalanceAfter()),
				tx.Timestamp().Format(time.RFC3339Nano),
			}, separator))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func kindParam(acc *domain.Account) (string, error) {
	switch acc.Kind() {
	case domain.KindSavings:
		return formatAmount(acc.InterestRate()), nil
	case domain.KindCredit:
		return formatAmount(acc.CreditLimit()), nil
	case domain.KindBusiness:
		return acc.Tier(), nil
	default:
		return "", errors.NewAppErrorf(errors.PersistenceError, "unknown account kind %q", acc.Kind())
	}
}

func (s *TextBankSerializer) Deserialize(data string) (*domain.Bank, error) {
	bank := domain.NewBank(s.logger)
	if strings.TrimSpace(data) == "" {
		return bank, nil
	}

	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, separator)
		switch parts[0] {
		case accountPrefix:
			acc, err := s.parseAccount(parts)
			if err != nil {
				return nil, lineError(i, err)
			}
			if err := bank.AddAccount(acc); err != nil {
				return nil, lineError(i, err)
			}
		case transactionPrefix:
			// History is not reconstructed; the line is still checked so a
			// truncated file fails loudly instead of loading half a bank.
			if len(parts) < 6 {
				return nil, lineError(i, errors.NewAppError(errors.PersistenceError, "malformed transaction line"))
			}
		default:
			return nil, lineError(i, errors.NewAppErrorf(errors.PersistenceError, "unknown record type %q", parts[0]))
		}
	}
	return bank, nil
}

func (s *TextBankSerializer) parseAccount(parts []string) (*domain.Account, error) {
	if len(parts) < 5 {
		return nil, errors.NewAppError(errors.PersistenceError, "malformed account line")
	}
	kind, id := domain.Kind(parts[1]), parts[2]
	balance, err := parseAmount(parts[3])
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindSavings:
		rate, err := parseAmount(parts[4])
		if err != nil {
			return nil, err
		}
		return domain.NewSavingsAccount(id, balance, rate, s.logger), nil
	case domain.KindCredit:
		limit, err := parseAmount(parts[4])
		if err != nil {
			return nil, err
		}
		return domain.NewCreditAccount(id, balance, limit, s.logger), nil
	case domain.KindBusiness:
		return domain.NewBusinessAccount(id, balance, 0, 0, parts[4], s.logger), nil
	default:
		return nil, errors.NewAppErrorf(errors.PersistenceError, "unknown account kind %q", kind)
	}
}

func lineError(index int, err error) error {
	if appErr, ok := err.(*errors.AppError); ok {
		return errors.NewAppErrorf(errors.PersistenceError, "line %d: %s", index+1, appErr.Message)
	}
	return errors.NewAppErrorf(errors.PersistenceError, "line %d: %v", index+1, err)
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func parseAmount(v string) (float64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, errors.NewAppError(errors.PersistenceError, fmt.Sprintf("invalid numeric value %q", v))
	}
	return d.InexactFloat64(), nil
}
