package domain

import (
	"io"
	"log/slog"
	"time"

	"bank-ledger/internal/errors"
)

// Kind discriminates the closed set of account variants.
type Kind string

const (
	KindSavings  Kind = "SAVINGS"
	KindCredit   Kind = "CREDIT"
	KindBusiness Kind = "BUSINESS"
)

// kindRules is the per-kind behavior table. checkWithdraw decides whether a
// withdrawal is permissible given the fee that would apply; it runs before
// any mutation. accrueInterest returns the interest to credit and whether
// accrual applies at all right now; a nil entry means the kind has no
// interest operation.
type kindRules struct {
	checkWithdraw  func(a *Account, amount, fee float64) error
	accrueInterest func(a *Account) (interest float64, applies bool)
}

var rulesByKind = map[Kind]kindRules{
	KindSavings: {
		// No overdraft: the withdrawal amount may not exceed the balance.
		// Only the amount counts toward the floor; the fee is charged
		// afterwards even when it exhausts the balance.
		checkWithdraw: func(a *Account, amount, fee float64) error {
			if a.balance-amount < 0 {
				return errors.NewAppError(errors.BusinessRuleViolation,
					"withdrawal would overdraw savings account")
			}
			return nil
		},
		// Accrues unconditionally. A negative balance (possible only at
		// construction) yields a reduction, which then fails the negative
		// interest check in ApplyInterest.
		accrueInterest: func(a *Account) (float64, bool) {
			return a.balance * a.interestRate, true
		},
	},
	KindCredit: {
		checkWithdraw: checkCreditFloor,
	},
	KindBusiness: {
		checkWithdraw: checkCreditFloor,
		// Interest only accrues on a positive balance; otherwise the
		// operation is a silent no-op.
		accrueInterest: func(a *Account) (float64, bool) {
			if a.balance <= 0 {
				return 0, false
			}
			return a.balance * a.interestRate, true
		},
	},
}

// checkCreditFloor enforces the overdraft floor shared by credit and
// business accounts: after the withdrawal and its fee, the balance must not
// fall below -creditLimit.
func checkCreditFloor(a *Account, amount, fee float64) error {
	if a.balance-amount-fee < -a.creditLimit {
		return errors.NewAppError(errors.BusinessRuleViolation,
			"withdrawal would exceed credit limit")
	}
	return nil
}

// Account holds a balance and an append-only transaction history under
// kind-specific overdraft rules. The zero value is not usable; construct
// through one of the New*Account functions.
//
// Invariant: balance always equals the initial balance plus the sum of the
// signed deltas of every transaction in history. History is never reordered,
// mutated or pruned after append (the transfer rollback in Bank only ever
// truncates entries appended by the failed attempt itself).
type Account struct {
	id           string
	kind         Kind
	balance      float64
	history      []Transaction
	feePolicy    FeePolicy
	observers    []AccountObserver
	interestRate float64
	creditLimit  float64
	tier         string
	logger       *slog.Logger
}

func newAccount(id string, kind Kind, balance float64, logger *slog.Logger) *Account {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Account{
		id:        id,
		kind:      kind,
		balance:   balance,
		feePolicy: NoFeePolicy{},
		logger:    logger,
	}
}

// NewSavingsAccount creates an account that may never be overdrawn and
// accrues interest at the given rate. The rate is not validated here; a
// negative rate surfaces as a business rule violation at accrual time.
func NewSavingsAccount(id string, balance, interestRate float64, logger *slog.Logger) *Account {
	a := newAccount(id, KindSavings, balance, logger)
	a.interestRate = interestRate
	return a
}

// NewCreditAccount creates an account that may go as low as -creditLimit.
func NewCreditAccount(id string, balance, creditLimit float64, logger *slog.Logger) *Account {
	a := newAccount(id, KindCredit, balance, logger)
	a.creditLimit = creditLimit
	return a
}

// NewBusinessAccount combines a credit line with interest accrual on
// positive balances, plus a service tier label.
func NewBusinessAccount(id string, balance, creditLimit, interestRate float64, tier string, logger *slog.Logger) *Account {
	a := newAccount(id, KindBusiness, balance, logger)
	a.creditLimit = creditLimit
	a.interestRate = interestRate
	a.tier = tier
	return a
}

func (a *Account) ID() string            { return a.id }
func (a *Account) Kind() Kind            { return a.kind }
func (a *Account) Balance() float64      { return a.balance }
func (a *Account) InterestRate() float64 { return a.interestRate }
func (a *Account) CreditLimit() float64  { return a.creditLimit }
func (a *Account) Tier() string          { return a.tier }

// FeePolicy returns the currently active policy.
func (a *Account) FeePolicy() FeePolicy { return a.feePolicy }

// SetFeePolicy swaps the active fee policy. The change affects only future
// withdrawals; recorded history keeps the fees that were charged at the time.
func (a *Account) SetFeePolicy(policy FeePolicy) {
	if policy == nil {
		policy = NoFeePolicy{}
	}
	a.feePolicy = policy
}

func (a *Account) AddObserver(obs AccountObserver) {
	a.observers = append(a.observers, obs)
}

func (a *Account) RemoveObserver(obs AccountObserver) {
	for i, o := range a.observers {
		if o == obs {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			return
		}
	}
}

// Deposit credits the account. No fee applies to deposits.
func (a *Account) Deposit(amount float64) error {
	return a.deposit(amount, TypeDeposit)
}

func (a *Account) deposit(amount float64, txType TransactionType) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}
	a.balance += amount
	a.record(newTransaction(txType, amount, a.balance))
	a.logger.Info("deposit applied",
		"account_id", a.id, "type", txType, "amount", amount, "balance", a.balance)
	return nil
}

// Withdraw debits the account following the fixed algorithm: validate the
// amount, ask the kind's rules whether the post-fee balance stays above the
// overdraft floor, then apply the withdrawal and, if the active policy
// charges one, the fee. A withdrawal with a fee records two transactions and
// notifies observers twice, WITHDRAW first, FEE second. A failure at either
// validation step leaves balance and history untouched.
func (a *Account) Withdraw(amount float64) error {
	return a.withdraw(amount, TypeWithdraw)
}

func (a *Account) withdraw(amount float64, txType TransactionType) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}
	fee := a.feePolicy.ComputeFee(amount)
	if err := rulesByKind[a.kind].checkWithdraw(a, amount, fee); err != nil {
		return err
	}
	a.balance -= amount
	a.record(newTransaction(txType, amount, a.balance))
	if fee > 0 {
		a.balance -= fee
		a.record(newTransaction(TypeFee, fee, a.balance))
	}
	a.logger.Info("withdrawal applied",
		"account_id", a.id, "type", txType, "amount", amount, "fee", fee, "balance", a.balance)
	return nil
}

// ApplyInterest accrues interest according to the kind's rule. Kinds without
// an accrual rule (credit) reject the operation; a skipped accrual (business
// with non-positive balance) records nothing and is not an error. Computed
// negative interest, reachable only through a negative rate, is refused
// before any mutation.
func (a *Account) ApplyInterest() error {
	rules := rulesByKind[a.kind]
	if rules.accrueInterest == nil {
		return errors.NewAppErrorf(errors.BusinessRuleViolation,
			"%s accounts do not accrue interest", a.kind)
	}
	interest, applies := rules.accrueInterest(a)
	if !applies {
		return nil
	}
	if interest < 0 {
		return errors.NewAppError(errors.BusinessRuleViolation, "interest cannot be negative")
	}
	a.balance += interest
	a.record(newTransaction(TypeInterest, interest, a.balance))
	a.logger.Info("interest applied",
		"account_id", a.id, "interest", interest, "balance", a.balance)
	return nil
}

// record appends the transaction and fans out to observers in registration
// order. Removing an observer from inside its own notification is undefined;
// the loop walks the live registration list.
func (a *Account) record(tx Transaction) {
	a.history = append(a.history, tx)
	for _, obs := range a.observers {
		a.notify(obs, tx)
	}
}

// notify shields the mutation from observer failures.
func (a *Account) notify(obs AccountObserver, tx Transaction) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("observer panicked",
				"account_id", a.id, "transaction_id", tx.ID(), "panic", r)
		}
	}()
	obs.OnTransaction(a, tx)
}

// History returns a snapshot of the transaction history in chronological
// order. The backing storage is never handed out.
func (a *Account) History() []Transaction {
	out := make([]Transaction, len(a.history))
	copy(out, a.history)
	return out
}

// FindByType returns the transactions of the given type, oldest first.
func (a *Account) FindByType(txType TransactionType) []Transaction {
	var out []Transaction
	for _, tx := range a.history {
		if tx.Type() == txType {
			out = append(out, tx)
		}
	}
	return out
}

// FindByDateRange returns the transactions recorded in [from, to], bounds
// inclusive.
func (a *Account) FindByDateRange(from, to time.Time) []Transaction {
	var out []Transaction
	for _, tx := range a.history {
		ts := tx.Timestamp()
		if !ts.Before(from) && !ts.After(to) {
			out = append(out, tx)
		}
	}
	return out
}

// TotalInterestEarned sums the INTEREST entries recorded so far.
func (a *Account) TotalInterestEarned() float64 {
	var total float64
	for _, tx := range a.history {
		if tx.Type() == TypeInterest {
			total += tx.Amount()
		}
	}
	return total
}

// restore rewinds balance and history to a snapshot taken before a failed
// multi-step operation. Only Bank's transfer rollback calls this.
func (a *Account) restore(balance float64, historyLen int) {
	a.balance = balance
	a.history = a.history[:historyLen]
}
