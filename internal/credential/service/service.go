// Package service hosts the issuance and verification pipelines. Issuance
// commits a credential, attempts a ledger anchor with a simulated fallback,
// and persists the record; verification re-derives trust by re-reading the
// ledger and matching the recorded commitment.
package service

import (
	"log/slog"
	"time"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/metrics"
	"github.com/Goodnessmbakara/BlockVerify/internal/credential/store"
	"github.com/Goodnessmbakara/BlockVerify/internal/ledger"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/tracer"
)

// Option configures the credential service.
type Option func(*Service)

// Service runs the issuance and verification pipelines.
type Service struct {
	store      store.Store
	ledger     ledger.Client
	keys       KeypairSource
	minBalance uint64

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	now     func() time.Time
}

// NewService creates a credential service with the required dependencies.
// minBalance is the fee threshold below which issuance skips the ledger write.
func NewService(s store.Store, l ledger.Client, keys KeypairSource, minBalance uint64, opts ...Option) *Service {
	svc := &Service{
		store:      s,
		ledger:     l,
		keys:       keys,
		minBalance: minBalance,
		tracer:     tracer.NewNoop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics configures pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer configures a tracer for the pipelines.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithClock overrides the issuance clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}
