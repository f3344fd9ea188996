package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.NewAppError(errors.InternalError, "an unexpected error occurred").WithDetails(err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	json.NewEncoder(w).Encode(Response{Error: &Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}})
}

// parseAmount converts a decimal string from a request body into the float
// the core works with. Amounts travel as strings on the wire so clients are
// not exposed to JSON float formatting.
func parseAmount(field, value string) (float64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.NewAppErrorf(errors.InvalidInput, "invalid %s format", field).WithDetails(err.Error())
	}
	return d.InexactFloat64(), nil
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}
