package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"
)

type AccountHandler struct {
	bankService *service.BankService
}

func NewAccountHandler(bankService *service.BankService) *AccountHandler {
	return &AccountHandler{
		bankService: bankService,
	}
}

type CreateAccountRequest struct {
	AccountID      string `json:"account_id"`
	Kind           string `json:"kind"`
	InitialBalance string `json:"initial_balance"`
	InterestRate   string `json:"interest_rate,omitempty"`
	CreditLimit    string `json:"credit_limit,omitempty"`
	Tier           string `json:"tier,omitempty"`
}

type AccountResponse struct {
	AccountID    string `json:"account_id"`
	Kind         string `json:"kind"`
	Balance      string `json:"balance"`
	InterestRate string `json:"interest_rate,omitempty"`
	CreditLimit  string `json:"credit_limit,omitempty"`
	Tier         string `json:"tier,omitempty"`
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type FeePolicyRequest struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type TransactionResponse struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceAfter  string    `json:"balance_after"`
	Timestamp     time.Time `json:"timestamp"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	params := service.CreateAccountParams{
		Kind: domain.Kind(req.Kind),
		ID:   req.AccountID,
		Tier: req.Tier,
	}
	var err error
	if params.InitialBalance, err = parseAmount("initial_balance", orZero(req.InitialBalance)); err != nil {
		writeError(w, err)
		return
	}
	if params.InterestRate, err = parseAmount("interest_rate", orZero(req.InterestRate)); err != nil {
		writeError(w, err)
		return
	}
	if params.CreditLimit, err = parseAmount("credit_limit", orZero(req.CreditLimit)); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.bankService.CreateAccount(params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountResponse(account))
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.bankService.ListAccounts()
	out := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, accountResponse(acc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.bankService.GetAccount(mux.Vars(r)["account_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.bankService.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.bankService.Withdraw)
}

func (h *AccountHandler) applyAmount(w http.ResponseWriter, r *http.Request, op func(string, float64) (service.AccountSnapshot, error)) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := op(mux.Vars(r)["account_id"], amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

func (h *AccountHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	account, err := h.bankService.ApplyInterest(mux.Vars(r)["account_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

func (h *AccountHandler) SetFeePolicy(w http.ResponseWriter, r *http.Request) {
	var req FeePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	var policy domain.FeePolicy
	switch req.Type {
	case "none":
		policy = domain.NoFeePolicy{}
	case "fixed":
		fee, err := parseAmount("value", req.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		policy = domain.NewFixedFeePolicy(fee)
	case "percentage":
		rate, err := parseAmount("value", req.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		policy = domain.NewPercentageFeePolicy(rate)
	default:
		writeError(w, errors.NewAppErrorf(errors.InvalidInput, "unknown fee policy type %q", req.Type))
		return
	}

	account, err := h.bankService.SetFeePolicy(mux.Vars(r)["account_id"], policy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.bankService.Transactions(
		mux.Vars(r)["account_id"],
		r.URL.Query().Get("type"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, TransactionResponse{
			TransactionID: tx.ID.String(),
			Type:          string(tx.Type),
			Amount:        formatAmount(tx.Amount),
			BalanceAfter:  formatAmount(tx.BalanceAfter),
			Timestamp:     tx.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func accountResponse(a service.AccountSnapshot) AccountResponse {
	resp := AccountResponse{
		AccountID: a.ID,
		Kind:      string(a.Kind),
		Balance:   formatAmount(a.Balance),
		Tier:      a.Tier,
	}
	if a.InterestRate != 0 {
		resp.InterestRate = formatAmount(a.InterestRate)
	}
	if a.CreditLimit != 0 {
		resp.CreditLimit = formatAmount(a.CreditLimit)
	}
	return resp
}

func orZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
