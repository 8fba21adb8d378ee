package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/config"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
)

// Error codes returned in the "error" field.
const (
	codeInvalidPeriod  = "InvalidPeriod"
	codeUnknownAccount = "UnknownAccount"
	codeEmptyChart     = "EmptyChart"
	codeInvalidRequest = "InvalidRequest"
	codeNotFound       = "NotFound"
	codeConflict       = "Conflict"
	codeUnbalanced     = "Unbalanced"
	codeInternal       = "Internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, api.Error{Error: code, Message: msg})
}

// mapError turns a domain error into a status and response body. An unknown
// account reaching a report is a data-integrity fault and maps to 500.
func mapError(err error) (int, api.Error) {
	body := api.Error{Message: err.Error()}

	var unknown *ledger.UnknownAccountError
	switch {
	case errors.Is(err, ledger.ErrInvalidPeriod), errors.Is(err, ledger.ErrInvalidDate):
		body.Error = codeInvalidPeriod
		return http.StatusBadRequest, body
	case errors.As(err, &unknown):
		body.Error = codeUnknownAccount
		body.AccountID = unknown.AccountID
		return http.StatusInternalServerError, body
	case errors.Is(err, ledger.ErrEmptyChart):
		body.Error = codeEmptyChart
		return http.StatusInternalServerError, body
	case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, ledger.ErrTransactionNotFound):
		body.Error = codeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, ledger.ErrDuplicateAccount), errors.Is(err, ledger.ErrAccountInUse):
		body.Error = codeConflict
		return http.StatusConflict, body
	case errors.Is(err, ledger.ErrUnbalancedTransaction):
		body.Error = codeUnbalanced
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, ledger.ErrTooFewEntries),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAccountCode),
		errors.Is(err, ledger.ErrInvalidAccountID),
		errors.Is(err, ledger.ErrInvalidClassification),
		errors.Is(err, ledger.ErrCodeClassificationMismatch),
		errors.Is(err, ledger.ErrEmptyAccountName),
		errors.Is(err, ledger.ErrParentClassificationMismatch),
		errors.Is(err, ledger.ErrChartCycle),
		errors.Is(err, report.ErrUnknownKind):
		body.Error = codeInvalidRequest
		return http.StatusBadRequest, body
	default:
		body.Error = codeInternal
		return http.StatusInternalServerError, body
	}
}

// fail writes err as an error response and logs it when the fault is ours.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		config.LogError(s.log, "server", funcName, r.URL.String(), nil, err)
	}
	writeJSON(w, status, body)
}

// failInput is fail for requests that name accounts themselves. There an
// unknown account is the caller's mistake.
func (s *Server) failInput(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	var unknown *ledger.UnknownAccountError
	if errors.As(err, &unknown) {
		writeJSON(w, http.StatusUnprocessableEntity, api.Error{
			Error:     codeUnknownAccount,
			Message:   err.Error(),
			AccountID: unknown.AccountID,
		})
		return
	}
	s.fail(w, r, funcName, err)
}
