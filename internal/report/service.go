package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/sirupsen/logrus"
)

// LedgerReader is the read side of the ledger store. Snapshot must return
// entries and watermark from one consistent view; a zero from means the
// first posting.
type LedgerReader interface {
	Snapshot(ctx context.Context, from, to ledger.Date) (*ledger.Snapshot, error)
	Watermark(ctx context.Context) (string, error)
}

// ChartSource hands out the current chart and its generation.
type ChartSource interface {
	Snapshot() (*chart.Chart, uint64)
}

// Cache stores finished reports. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*Report, bool, error)
	Set(ctx context.Context, key string, r *Report) error
}

type Service struct {
	reader LedgerReader
	charts ChartSource
	cache  Cache
	log    *logrus.Logger
	slow   time.Duration
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithSlowThreshold logs a warning for reports that take longer than d.
func WithSlowThreshold(d time.Duration) Option {
	return func(s *Service) { s.slow = d }
}

func NewService(reader LedgerReader, charts ChartSource, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		charts: charts,
		log:    logrus.StandardLogger(),
		slow:   500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a report of kind for period. It fails with
// ledger.ErrInvalidPeriod, an UnknownAccountError or ledger.ErrEmptyChart;
// any other error comes from the ledger read and is returned as is.
func (s *Service) Generate(ctx context.Context, kind Kind, period ledger.Period) (*Report, error) {
	started := time.Now()
	r, err := s.generate(ctx, kind, period)

	reportDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
	reportsGenerated.WithLabelValues(string(kind), outcome(r, err)).Inc()

	fields := logrus.Fields{"kind": kind, "period": period.String()}
	switch {
	case err != nil && !errors.Is(err, ledger.ErrInvalidPeriod):
		s.log.WithFields(fields).WithError(err).Error("report generation failed")
	case r != nil && r.Imbalanced:
		s.log.WithFields(fields).WithField("assets", ledger.FormatAmount(r.Total)).Warn("balance sheet does not balance")
	}
	if d := time.Since(started); s.slow > 0 && d > s.slow {
		s.log.WithFields(fields).WithField("ms", d.Milliseconds()).Warn("slow report")
	}
	return r, err
}

func (s *Service) generate(ctx context.Context, kind Kind, period ledger.Period) (*Report, error) {
	if kind.Classifications() == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	c, _ := s.charts.Snapshot()
	if c == nil {
		return nil, ledger.ErrEmptyChart
	}

	scope := period
	if kind == BalanceSheet {
		if !period.Start.IsZero() {
			s.log.WithField("start", period.Start.String()).Debug("balance sheet ignores start date")
		}
		scope = ledger.Through(period.End)
	}

	if s.cache != nil {
		if watermark, err := s.reader.Watermark(ctx); err != nil {
			s.log.WithError(err).Warn("read ledger watermark")
		} else if r, ok := s.cacheGet(ctx, cacheKey(kind, scope, c.Fingerprint(), watermark)); ok {
			return r, nil
		}
	}

	snap, err := s.reader.Snapshot(ctx, scope.Start, scope.End)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	balances, err := Aggregate(c, scope, snap.Entries)
	if err != nil {
		return nil, err
	}
	r, err := Build(kind, c, balances, scope)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		key := cacheKey(kind, scope, c.Fingerprint(), snap.Watermark)
		if err := s.cache.Set(ctx, key, r); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("cache report")
		}
	}
	return r, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) (*Report, bool) {
	r, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		reportCache.WithLabelValues("error").Inc()
		s.log.WithError(err).WithField("key", key).Warn("read cached report")
		return nil, false
	case !ok:
		reportCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	reportCache.WithLabelValues("hit").Inc()
	return r, true
}

// cacheKey identifies a report by what it was computed from: the chart
// content and the ledger watermark. Both are derived from stored data, so
// the key means the same thing to every process sharing the cache.
func cacheKey(kind Kind, scope ledger.Period, chartPrint, watermark string) string {
	return fmt.Sprintf("report:%s:%s:%s:c%s:w%s", kind, scope.Start, scope.End, chartPrint, watermark)
}

func outcome(r *Report, err error) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidPeriod):
		return "invalid_period"
	case errors.Is(err, ledger.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, ledger.ErrEmptyChart):
		return "empty_chart"
	case err != nil:
		return "error"
	case r.Imbalanced:
		return "imbalanced"
	}
	return "ok"
}
