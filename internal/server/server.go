package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/events"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
	"github.com/simonvc/finreports/internal/store"
	"github.com/sirupsen/logrus"
)

// Ledger is the store behind the API. Both the SQLite and the Postgres
// stores satisfy it.
type Ledger interface {
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, acct *ledger.Account) error
	GetAccount(ctx context.Context, id string) (*ledger.Account, error)
	ListAccounts(ctx context.Context, filter store.AccountFilter) ([]ledger.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	AccountBalance(ctx context.Context, accountID string, asOf ledger.Date) (decimal.Decimal, error)

	CreateTransaction(ctx context.Context, txn *ledger.Transaction) error
	GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error)
	ListTransactions(ctx context.Context, filter store.TxnFilter) ([]ledger.Transaction, error)
}

type Reporter interface {
	Generate(ctx context.Context, kind report.Kind, period ledger.Period) (*report.Report, error)
}

type Charts interface {
	Reload(ctx context.Context) (*chart.Chart, error)
	Snapshot() (*chart.Chart, uint64)
}

type Options struct {
	Addr           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Events         events.Publisher
	Logger         *logrus.Logger
}

type Server struct {
	ledger  Ledger
	reports Reporter
	charts  Charts
	events  events.Publisher
	log     *logrus.Logger
	router  chi.Router
	addr    string
}

func New(l Ledger, reports Reporter, charts Charts, opts Options) *Server {
	if opts.Events == nil {
		opts.Events = events.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s := &Server{
		ledger:  l,
		reports: reports,
		charts:  charts,
		events:  opts.Events,
		log:     opts.Logger,
		router:  r,
		addr:    opts.Addr,
	}

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Statements
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/profit-loss", s.profitLoss)

		// Accounts
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)

		// Journal
		r.Post("/journal-entries", s.postTransaction)
		r.Get("/journal-entries", s.listTransactions)
		r.Get("/journal-entries/{id}", s.getTransaction)

		// Chart of accounts
		r.Get("/chart", s.getChart)
		r.Post("/chart/reload", s.reloadChart)
	})

	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("finreports server listening")
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.log.Info("finreports server stopped")
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
		return
	}
	c, generation := s.charts.Snapshot()
	accounts := 0
	if c != nil {
		accounts = c.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"chart_generation": generation,
		"accounts":         accounts,
	})
}
