// Package monitor probes the service's dependencies: the credential store,
// the ledger RPC endpoint, and the signing account's funding level. Probes
// run concurrently; the overall verdict combines store and ledger health,
// while an unfunded wallet only degrades the reported mode.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Goodnessmbakara/BlockVerify/internal/wallet"
)

// Store is the subset of the credential store used by liveness probes.
type Store interface {
	Ping(ctx context.Context) error
}

// Ledger is the subset of the ledger client used by liveness probes.
type Ledger interface {
	LatestBlockhash(ctx context.Context) (string, error)
	Balance(ctx context.Context, address string) (uint64, error)
}

// KeypairSource supplies the process signing keypair.
type KeypairSource interface {
	Keypair() (wallet.Keypair, error)
}

// Component is the probe result for a single dependency. LatencyMS is the
// probe round trip, measured even when the probe fails.
type Component struct {
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}

// Status is a point-in-time snapshot of dependency health. Healthy requires
// the store and the ledger; wallet funding selects between real and simulated
// anchoring modes but never takes the service down.
type Status struct {
	Store   Component `json:"store"`
	Ledger  Component `json:"ledger"`
	Wallet  Component `json:"wallet"`
	Healthy bool      `json:"healthy"`
	Mode    string    `json:"mode"`
}

const (
	ModeReal      = "real"
	ModeSimulated = "simulated"
)

// Option configures the monitor.
type Option func(*Monitor)

// Monitor runs dependency probes.
type Monitor struct {
	store      Store
	ledger     Ledger
	keys       KeypairSource
	minBalance uint64

	logger  *slog.Logger
	timeout time.Duration
}

// New creates a monitor. minBalance is the funding threshold below which the
// wallet probe reports simulated mode.
func New(store Store, ledger Ledger, keys KeypairSource, minBalance uint64, opts ...Option) *Monitor {
	m := &Monitor{
		store:      store,
		ledger:     ledger,
		keys:       keys,
		minBalance: minBalance,
		timeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithLogger configures a logger for probe failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithTimeout bounds a full probe round.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = timeout
	}
}

// Check probes all dependencies concurrently and returns a snapshot.
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var status Status
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status.Store = m.probeStore(ctx)
		return nil
	})
	g.Go(func() error {
		status.Ledger, status.Wallet = m.probeLedger(ctx)
		return nil
	})
	_ = g.Wait()

	status.Healthy = status.Store.Healthy && status.Ledger.Healthy
	status.Mode = ModeSimulated
	if status.Ledger.Healthy && status.Wallet.Healthy {
		status.Mode = ModeReal
	}
	return status
}

func (m *Monitor) probeStore(ctx context.Context) Component {
	start := time.Now()
	err := m.store.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		m.warn(ctx, "store probe failed", err)
		return Component{LatencyMS: latency, Detail: err.Error()}
	}
	return Component{Healthy: true, LatencyMS: latency}
}

// probeLedger checks ledger reachability and, when reachable, the signing
// account's balance against the fee threshold.
func (m *Monitor) probeLedger(ctx context.Context) (ledger, funding Component) {
	start := time.Now()
	_, err := m.ledger.LatestBlockhash(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		m.warn(ctx, "ledger probe failed", err)
		return Component{LatencyMS: latency, Detail: err.Error()}, Component{Detail: "ledger unreachable"}
	}
	ledger = Component{Healthy: true, LatencyMS: latency}

	keypair, err := m.keys.Keypair()
	if err != nil {
		return ledger, Component{Detail: err.Error()}
	}
	balance, err := m.ledger.Balance(ctx, keypair.Address())
	if err != nil {
		m.warn(ctx, "balance probe failed", err)
		return ledger, Component{Detail: err.Error()}
	}
	if balance < m.minBalance {
		return ledger, Component{Detail: "signing account below fee threshold"}
	}
	return ledger, Component{Healthy: true}
}

func (m *Monitor) warn(ctx context.Context, msg string, err error) {
	if m.logger != nil {
		m.logger.WarnContext(ctx, msg, "error", err)
	}
}
