package repository

import (
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// PostgresBankRepository keeps the registry in an accounts table plus an
// append-only transactions table. Save replaces the stored registry inside a
// single SQL transaction; Load rebuilds accounts in their original insertion
// order. Like the text format, reload does not reconstruct history: the
// transactions table is an audit trail, not replay input.
type PostgresBankRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresBankRepository(db *sql.DB, logger *slog.Logger) *PostgresBankRepository {
	return &PostgresBankRepository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the schema if it is not there yet.
func (r *PostgresBankRepository) Migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			kind          TEXT NOT NULL,
			balance       NUMERIC(24, 8) NOT NULL,
			interest_rate NUMERIC(16, 8) NOT NULL DEFAULT 0,
			credit_limit  NUMERIC(24, 8) NOT NULL DEFAULT 0,
			tier          TEXT NOT NULL DEFAULT '',
			position      INT NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS transactions (
			id            UUID PRIMARY KEY,
			account_id    TEXT NOT NULL,
			type          TEXT NOT NULL,
			amount        NUMERIC(24, 8) NOT NULL,
			balance_after NUMERIC(24, 8) NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return persistenceErr("migrating schema", err)
	}
	return nil
}

func (r *PostgresBankRepository) Save(bank *domain.Bank) error {
	tx, err := r.db.Begin()
	if err != nil {
		return persistenceErr("beginning save transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transactions`); err != nil {
		return persistenceErr("clearing transactions", err)
	}
	if _, err := tx.Exec(`DELETE FROM accounts`); err != nil {
		return persistenceErr("clearing accounts", err)
	}

	insertAccount := `
		INSERT INTO accounts (id, kind, balance, interest_rate, credit_limit, tier, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	insertTransaction := `
		INSERT INTO transactions (id, account_id, type, amount, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for position, acc := range bank.Accounts() {
		_, err := tx.Exec(insertAccount,
			acc.ID(),
			string(acc.Kind()),
			decimal.NewFromFloat(acc.Balance()).String(),
			decimal.NewFromFloat(acc.InterestRate()).String(),
			decimal.NewFromFloat(acc.CreditLimit()).String(),
			acc.Tier(),
			position,
		)
		if err != nil {
			return persistenceErr("inserting account "+acc.ID(), err)
		}

		for _, rec := range acc.History() {
			_, err := tx.Exec(insertTransaction,
				rec.ID(),
				acc.ID(),
				string(rec.Type()),
				decimal.NewFromFloat(rec.Amount()).String(),
				decimal.NewFromFloat(rec.BalanceAfter()).String(),
				rec.Timestamp(),
			)
			if err != nil {
				return persistenceErr("inserting transaction for "+acc.ID(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceErr("committing save", err)
	}
	r.logger.Info("bank saved", "accounts", len(bank.Accounts()))
	return nil
}

func (r *PostgresBankRepository) Load() (*domain.Bank, error) {
	rows, err := r.db.Query(`
		SELECT id, kind, balance, interest_rate, credit_limit, tier
		FROM accounts ORDER BY position
	`)
	if err != nil {
		return nil, persistenceErr("loading accounts", err)
	}
	defer rows.Close()

	bank := domain.NewBank(r.logger)
	for rows.Next() {
		var (
			id, kind, tier                string
			balanceStr, rateStr, limitStr string
		)
		if err := rows.Scan(&id, &kind, &balanceStr, &rateStr, &limitStr, &tier); err != nil {
			return nil, persistenceErr("scanning account", err)
		}

		balance, err := parseAmount(balanceStr)
		if err != nil {
			return nil, err
		}
		rate, err := parseAmount(rateStr)
		if err != nil {
			return nil, err
		}
		limit, err := parseAmount(limitStr)
		if err != nil {
			return nil, err
		}

		var acc *domain.Account
		switch domain.Kind(kind) {
		case domain.KindSavings:
			acc = domain.NewSavingsAccount(id, balance, rate, r.logger)
		case domain.KindCredit:
			acc = domain.NewCreditAccount(id, balance, limit, r.logger)
		case domain.KindBusiness:
			acc = domain.NewBusinessAccount(id, balance, limit, rate, tier, r.logger)
		default:
			return nil, errors.NewAppErrorf(errors.PersistenceError, "unknown account kind %q", kind)
		}
		if err := bank.AddAccount(acc); err != nil {
			return nil, persistenceErr("registering account "+id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("iterating accounts", err)
	}
	return bank, nil
}

func persistenceErr(op string, err error) *errors.AppError {
	appErr := errors.NewAppError(errors.PersistenceError, op+" failed").WithCause(err)
	if pqErr, ok := err.(*pq.Error); ok {
		appErr = appErr.WithDetails(string(pqErr.Code) + ": " + pqErr.Message)
	}
	return appErr
}
