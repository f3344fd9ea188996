package handler

import (
	"encoding/json"
	"net/http"

	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"
)

type TransferHandler struct {
	bankService *service.BankService
}

func NewTransferHandler(bankService *service.BankService) *TransferHandler {
	return &TransferHandler{
		bankService: bankService,
	}
}

type TransferRequest struct {
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
}

type TransferResponse struct {
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	Status               string `json:"status"`
}

func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.bankService.Transfer(req.SourceAccountID, req.DestinationAccountID, amount); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransferResponse{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Status:               "completed",
	})
}
