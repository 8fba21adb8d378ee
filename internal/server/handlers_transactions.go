package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/config"
	"github.com/simonvc/finreports/internal/events"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/store"
)

// signedAmount resolves an entry to the ledger sign: debits positive,
// credits negative.
func signedAmount(e api.EntryRequest) (decimal.Decimal, error) {
	if e.Amount != nil {
		if e.Debit != nil || e.Credit != nil {
			return decimal.Zero, fmt.Errorf("%w: %s: give amount or debit/credit, not both", ledger.ErrInvalidAmount, e.AccountID)
		}
		return *e.Amount, nil
	}
	if e.Debit == nil && e.Credit == nil {
		return decimal.Zero, fmt.Errorf("%w: %s: amount is required", ledger.ErrInvalidAmount, e.AccountID)
	}

	amount := decimal.Zero
	if e.Debit != nil {
		if e.Debit.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s: negative debit", ledger.ErrInvalidAmount, e.AccountID)
		}
		amount = amount.Add(*e.Debit)
	}
	if e.Credit != nil {
		if e.Credit.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s: negative credit", ledger.ErrInvalidAmount, e.AccountID)
		}
		amount = amount.Sub(*e.Credit)
	}
	return amount, nil
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req api.PostTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		s.fail(w, r, "postTransaction", err)
		return
	}
	txn := &ledger.Transaction{Date: date, Description: req.Description}
	for _, e := range req.Entries {
		amount, err := signedAmount(e)
		if err != nil {
			s.fail(w, r, "postTransaction", err)
			return
		}
		txn.Entries = append(txn.Entries, ledger.JournalEntry{
			AccountID:   e.AccountID,
			Amount:      amount,
			Description: e.Description,
		})
	}

	if err := s.ledger.CreateTransaction(r.Context(), txn); err != nil {
		s.failInput(w, r, "postTransaction", err)
		return
	}

	// The posting is committed; a lost event is logged, not returned.
	if err := s.events.Publish(r.Context(), txn.ID, events.NewTransactionPosted(*txn, time.Now())); err != nil {
		config.LogError(s.log, "server", "postTransaction", "publish "+events.TransactionPosted, txn.ID, err)
	}

	writeJSON(w, http.StatusCreated, api.NewTransaction(*txn))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TxnFilter{AccountID: q.Get("account_id")}

	var err error
	if filter.Start, err = dateParam(q, "start", false); err != nil {
		s.fail(w, r, "listTransactions", err)
		return
	}
	if filter.End, err = dateParam(q, "end", false); err != nil {
		s.fail(w, r, "listTransactions", err)
		return
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() {
		if err := (ledger.Period{Start: filter.Start, End: filter.End}).Validate(); err != nil {
			s.fail(w, r, "listTransactions", err)
			return
		}
	}
	if filter.Limit, filter.Offset, err = pageParams(q); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	txns, err := s.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "listTransactions", err)
		return
	}
	out := make([]api.Transaction, len(txns))
	for i, t := range txns {
		out[i] = api.NewTransaction(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	txn, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		s.fail(w, r, "getTransaction", err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewTransaction(*txn))
}
