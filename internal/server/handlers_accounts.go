package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/config"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/store"
)

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	acct := &ledger.Account{
		ID:          req.ID,
		Name:        req.Name,
		Code:        req.Code,
		ParentID:    req.ParentID,
		Description: req.Description,
	}
	if acct.ID == "" {
		acct.ID = strconv.Itoa(req.Code)
	}

	// Classification comes from the request, else the code, else the parent.
	switch {
	case req.Classification != "":
		c, err := ledger.ParseClassification(req.Classification)
		if err != nil {
			s.fail(w, r, "createAccount", err)
			return
		}
		acct.Classification = c
	case req.Code != 0:
		c, err := ledger.ClassificationForCode(req.Code)
		if err != nil {
			s.fail(w, r, "createAccount", err)
			return
		}
		acct.Classification = c
	case req.ParentID != "":
		parent, err := s.ledger.GetAccount(r.Context(), req.ParentID)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			err = ledger.UnknownAccount(req.ParentID)
		}
		if err != nil {
			s.failInput(w, r, "createAccount", err)
			return
		}
		acct.Classification = parent.Classification
	default:
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "one of classification, code or parent_id is required")
		return
	}

	if err := s.ledger.CreateAccount(r.Context(), acct); err != nil {
		s.failInput(w, r, "createAccount", err)
		return
	}
	s.refreshChart(r.Context())

	created, err := s.ledger.GetAccount(r.Context(), acct.ID)
	if err != nil {
		created = acct
	}
	writeJSON(w, http.StatusCreated, s.accountView(*created))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AccountFilter{ParentID: q.Get("parent_id")}

	if c := q.Get("classification"); c != "" {
		class, err := ledger.ParseClassification(c)
		if err != nil {
			s.fail(w, r, "listAccounts", err)
			return
		}
		filter.Classification = class
	}
	var err error
	if filter.Limit, filter.Offset, err = pageParams(q); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	accounts, err := s.ledger.ListAccounts(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "listAccounts", err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// getAccount returns the account, its ancestors, and the balance of its own
// postings in the account's normal sign.
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := url.PathUnescape(chi.URLParam(r, "id"))
	asOf, err := dateParam(r.URL.Query(), "asOf", false)
	if err != nil {
		s.fail(w, r, "getAccount", err)
		return
	}

	acct, err := s.ledger.GetAccount(r.Context(), id)
	if err != nil {
		s.fail(w, r, "getAccount", err)
		return
	}
	raw, err := s.ledger.AccountBalance(r.Context(), id, asOf)
	if err != nil {
		s.fail(w, r, "getAccount", err)
		return
	}

	view := s.accountView(*acct)
	view.Balance = ledger.FormatAmount(ledger.Normalize(acct.Classification, raw))
	if !asOf.IsZero() {
		view.AsOf = asOf.String()
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := url.PathUnescape(chi.URLParam(r, "id"))
	if err := s.ledger.DeleteAccount(r.Context(), id); err != nil {
		s.fail(w, r, "deleteAccount", err)
		return
	}
	s.refreshChart(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) accountView(acct ledger.Account) api.Account {
	view := api.Account{Account: acct}
	if c, _ := s.charts.Snapshot(); c != nil {
		if _, path, err := c.Classify(acct.ID); err == nil {
			view.Path = path
		}
	}
	return view
}

// refreshChart picks up account changes. A failed reload keeps the previous
// chart, so the request that triggered it still succeeds.
func (s *Server) refreshChart(ctx context.Context) {
	if _, err := s.charts.Reload(ctx); err != nil {
		config.LogError(s.log, "server", "refreshChart", "chart reload after account change", nil, err)
	}
}

func pageParams(q url.Values) (limit, offset int, err error) {
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", v)
		}
	}
	return limit, offset, nil
}
