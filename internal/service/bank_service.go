package service

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/repository"
)

// BankService is the application facade over the ledger core. The core
// itself is single-threaded by design, so the service serializes every
// operation behind one lock and only ever hands out snapshots, never live
// domain state.
type BankService struct {
	mu        sync.RWMutex
	bank      *domain.Bank
	repo      repository.BankRepository
	observers []domain.AccountObserver
	logger    *slog.Logger
}

// NewBankService restores the registry from the repository and attaches the
// given observers to every loaded account (and to every account created
// later). A repository whose medium does not exist yet is a fresh start, not
// a failure; every other load error aborts construction.
func NewBankService(repo repository.BankRepository, logger *slog.Logger, observers ...domain.AccountObserver) (*BankService, error) {
	bank, err := repo.Load()
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Info("no saved registry, starting empty")
		bank = domain.NewBank(logger)
	}
	for _, acc := range bank.Accounts() {
		for _, obs := range observers {
			acc.AddObserver(obs)
		}
	}
	logger.Info("bank restored", "accounts", len(bank.Accounts()))
	return &BankService{
		bank:      bank,
		repo:      repo,
		observers: observers,
		logger:    logger,
	}, nil
}

// AccountSnapshot is a point-in-time copy of an account's externally visible
// state.
type AccountSnapshot struct {
	ID           string
	Kind         domain.Kind
	Balance      float64
	InterestRate float64
	CreditLimit  float64
	Tier         string
}

// TransactionSnapshot is a read-only copy of one history entry.
type TransactionSnapshot struct {
	ID           uuid.UUID
	Type         domain.TransactionType
	Amount       float64
	BalanceAfter float64
	Timestamp    time.Time
}

type CreateAccountParams struct {
	Kind           domain.Kind
	ID             string
	InitialBalance float64
	InterestRate   float64
	CreditLimit    float64
	Tier           string
}

func (s *BankService) CreateAccount(params CreateAccountParams) (AccountSnapshot, error) {
	if params.ID == "" {
		return AccountSnapshot{}, errors.NewAppError(errors.InvalidInput, "account id must not be empty")
	}

	var acc *domain.Account
	switch params.Kind {
	case domain.KindSavings:
		acc = domain.NewSavingsAccount(params.ID, params.InitialBalance, params.InterestRate, s.logger)
	case domain.KindCredit:
		acc = domain.NewCreditAccount(params.ID, params.InitialBalance, params.CreditLimit, s.logger)
	case domain.KindBusiness:
		acc = domain.NewBusinessAccount(params.ID, params.InitialBalance, params.CreditLimit, params.InterestRate, params.Tier, s.logger)
	default:
		return AccountSnapshot{}, errors.NewAppErrorf(errors.InvalidInput, "unknown account kind %q", params.Kind)
	}
	for _, obs := range s.observers {
		acc.AddObserver(obs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bank.AddAccount(acc); err != nil {
		return AccountSnapshot{}, err
	}
	s.persistLocked()
	s.logger.Info("account created", "account_id", acc.ID(), "kind", acc.Kind())
	return snapshotAccount(acc), nil
}

func (s *BankService) GetAccount(id string) (AccountSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, err := s.bank.Account(id)
	if err != nil {
		return AccountSnapshot{}, err
	}
	return snapshotAccount(acc), nil
}

func (s *BankService) ListAccounts() []AccountSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := s.bank.Accounts()
	out := make([]AccountSnapshot, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, snapshotAccount(acc))
	}
	return out
}

func (s *BankService) Deposit(id string, amount float64) (AccountSnapshot, error) {
	return s.mutateAccount(id, func(acc *domain.Account) error {
		return acc.Deposit(amount)
	})
}

func (s *BankService) Withdraw(id string, amount float64) (AccountSnapshot, error) {
	return s.mutateAccount(id, func(acc *domain.Account) error {
		return acc.Withdraw(amount)
	})
}

func (s *BankService) ApplyInterest(id string) (AccountSnapshot, error) {
	return s.mutateAccount(id, func(acc *domain.Account) error {
		return acc.ApplyInterest()
	})
}

// SetFeePolicy swaps the account's active fee policy; only future
// withdrawals are affected.
func (s *BankService) SetFeePolicy(id string, policy domain.FeePolicy) (AccountSnapshot, error) {
	return s.mutateAccount(id, func(acc *domain.Account) error {
		acc.SetFeePolicy(policy)
		return nil
	})
}

func (s *BankService) mutateAccount(id string, op func(*domain.Account) error) (AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.bank.Account(id)
	if err != nil {
		return AccountSnapshot{}, err
	}
	if err := op(acc); err != nil {
		return AccountSnapshot{}, err
	}
	s.persistLocked()
	return snapshotAccount(acc), nil
}

// Transactions returns the account's history, optionally filtered by type.
func (s *BankService) Transactions(id string, typeFilter string) ([]TransactionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, err := s.bank.Account(id)
	if err != nil {
		return nil, err
	}

	var history []domain.Transaction
	if typeFilter == "" {
		history = acc.History()
	} else {
		txType, err := parseTransactionType(typeFilter)
		if err != nil {
			return nil, err
		}
		history = acc.FindByType(txType)
	}

	out := make([]TransactionSnapshot, 0, len(history))
	for _, tx := range history {
		out = append(out, TransactionSnapshot{
			ID:           tx.ID(),
			Type:         tx.Type(),
			Amount:       tx.Amount(),
			BalanceAfter: tx.BalanceAfter(),
			Timestamp:    tx.Timestamp(),
		})
	}
	return out, nil
}

func (s *BankService) Transfer(fromID, toID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bank.Transfer(fromID, toID, amount); err != nil {
		return err
	}
	s.persistLocked()
	return nil
}

// Persist saves the registry and surfaces any persistence error verbatim.
func (s *BankService) Persist() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Save(s.bank)
}

// persistLocked snapshots the registry after a successful mutation. The
// in-memory ledger stays authoritative, so a failed save is logged and the
// mutation's outcome is not reversed.
func (s *BankService) persistLocked() {
	if err := s.repo.Save(s.bank); err != nil {
		s.logger.Error("failed to persist bank", "error", err)
	}
}

func snapshotAccount(acc *domain.Account) AccountSnapshot {
	return AccountSnapshot{
		ID:           acc.ID(),
		Kind:         acc.Kind(),
		Balance:      acc.Balance(),
		InterestRate: acc.InterestRate(),
		CreditLimit:  acc.CreditLimit(),
		Tier:         acc.Tier(),
	}
}

func parseTransactionType(v string) (domain.TransactionType, error) {
	switch t := domain.TransactionType(v); t {
	case domain.TypeDeposit, domain.TypeWithdraw, domain.TypeInterest,
		domain.TypeFee, domain.TypeTransferIn, domain.TypeTransferOut:
		return t, nil
	default:
		return "", errors.NewAppErrorf(errors.InvalidInput, "unknown transaction type %q", v)
	}
}
