package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/export"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
)

// dateParam parses a YYYY-MM-DD query parameter. A missing required
// parameter and a malformed one are both period errors.
func dateParam(q url.Values, name string, required bool) (ledger.Date, error) {
	v := q.Get(name)
	if v == "" {
		if required {
			return ledger.Date{}, fmt.Errorf("%w: %s is required", ledger.ErrInvalidPeriod, name)
		}
		return ledger.Date{}, nil
	}
	d, err := ledger.ParseDate(v)
	if err != nil {
		return ledger.Date{}, fmt.Errorf("%w: %s: %w", ledger.ErrInvalidPeriod, name, err)
	}
	return d, nil
}

// balanceSheet serves GET /api/reports/balance-sheet?asOf=. A start
// parameter is accepted and passed along, but the statement always covers
// everything through asOf.
func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asOf, err := dateParam(q, "asOf", true)
	if err != nil {
		s.fail(w, r, "balanceSheet", err)
		return
	}
	start, err := dateParam(q, "start", false)
	if err != nil {
		s.fail(w, r, "balanceSheet", err)
		return
	}

	rep, err := s.reports.Generate(r.Context(), report.BalanceSheet, ledger.Period{Start: start, End: asOf})
	if err != nil {
		s.fail(w, r, "balanceSheet", err)
		return
	}
	if q.Get("format") == "xlsx" {
		s.writeSpreadsheet(w, r, rep)
		return
	}
	writeJSON(w, http.StatusOK, api.NewBalanceSheet(rep))
}

// profitLoss serves GET /api/reports/profit-loss?start=&end=.
func (s *Server) profitLoss(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := dateParam(q, "start", true)
	if err != nil {
		s.fail(w, r, "profitLoss", err)
		return
	}
	end, err := dateParam(q, "end", true)
	if err != nil {
		s.fail(w, r, "profitLoss", err)
		return
	}

	rep, err := s.reports.Generate(r.Context(), report.ProfitAndLoss, ledger.Period{Start: start, End: end})
	if err != nil {
		s.fail(w, r, "profitLoss", err)
		return
	}
	if q.Get("format") == "xlsx" {
		s.writeSpreadsheet(w, r, rep)
		return
	}
	writeJSON(w, http.StatusOK, api.NewProfitLoss(rep))
}

func (s *Server) writeSpreadsheet(w http.ResponseWriter, r *http.Request, rep *report.Report) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rep); err != nil {
		s.fail(w, r, "writeSpreadsheet", err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(rep)))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
