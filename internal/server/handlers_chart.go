package server

import (
	"net/http"

	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/ledger"
)

func chartTree(c *chart.Chart, generation uint64) api.Chart {
	out := api.Chart{Generation: generation, Accounts: []api.ChartNode{}}
	if c == nil {
		return out
	}
	var node func(a ledger.Account) api.ChartNode
	node = func(a ledger.Account) api.ChartNode {
		n := api.ChartNode{ID: a.ID, Name: a.Name, Code: a.Code, Classification: string(a.Classification)}
		for _, child := range c.Children(a.ID) {
			n.Children = append(n.Children, node(child))
		}
		return n
	}
	for _, class := range ledger.AllClassifications {
		for _, root := range c.Roots(class) {
			out.Accounts = append(out.Accounts, node(root))
		}
	}
	return out
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	c, generation := s.charts.Snapshot()
	if c == nil {
		s.fail(w, r, "getChart", ledger.ErrEmptyChart)
		return
	}
	writeJSON(w, http.StatusOK, chartTree(c, generation))
}

// reloadChart re-reads the chart from the store. On failure the previous
// chart stays in service.
func (s *Server) reloadChart(w http.ResponseWriter, r *http.Request) {
	if _, err := s.charts.Reload(r.Context()); err != nil {
		s.fail(w, r, "reloadChart", err)
		return
	}
	c, generation := s.charts.Snapshot()
	writeJSON(w, http.StatusOK, chartTree(c, generation))
}
