// Package aggregate rebuilds a user's snapshot from independent contract reads.
package aggregate

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vaultScope/internal/contracts"
	"vaultScope/internal/metrics"
	"vaultScope/internal/model"
)

// DefaultParallelReads bounds concurrent secondary reads.
const DefaultParallelReads = 6

// Reader is the read surface of the contract handles.
type Reader interface {
	UserRecord(ctx context.Context, user common.Address) (contracts.UserRecord, error)
	Summary(ctx context.Context, user common.Address) (contracts.Summary, error)
	Network(ctx context.Context, user common.Address) (contracts.Network, error)
	Timing(ctx context.Context, user common.Address) (contracts.Timing, error)
	Qualification(ctx context.Context, user common.Address) (contracts.Qualification, error)
	WithdrawFee(ctx context.Context, user common.Address) (contracts.FeeQuote, error)
	TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Observer receives refresh telemetry.
type Observer interface {
	ObserveRefresh(outcome string, elapsed time.Duration)
	ObserveReadWarning(call string)
}

// Config controls aggregation behavior.
type Config struct {
	ParallelReads int
	Observer      Observer
}

// Result is the outcome of one refresh.
type Result struct {
	Snapshot model.Snapshot
	// Committed is false when a newer refresh was issued while this one ran.
	Committed bool
	// Warnings combines every ReadError from secondary reads.
	Warnings error
}

// Aggregator fetches snapshots and holds the latest committed one.
type Aggregator struct {
	cfg    Config
	logger *zap.Logger

	mu        sync.Mutex
	issued    uint64
	current   model.Snapshot
	hasResult bool
}

func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ParallelReads <= 0 {
		cfg.ParallelReads = DefaultParallelReads
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// Refresh fetches a snapshot for addr and commits it if no newer refresh was issued meanwhile.
// The returned error is non-nil only when ctx ends before the fetch completes.
func (a *Aggregator) Refresh(ctx context.Context, r Reader, addr common.Address) (Result, error) {
	start := time.Now()
	seq := a.begin()

	snap, warnings := a.Fetch(ctx, r, addr)
	if err := ctx.Err(); err != nil {
		a.observe(metrics.OutcomeFailed, start)
		return Result{}, err
	}
	snap.Sequence = seq

	res := Result{Snapshot: snap, Warnings: warnings}
	res.Committed = a.commit(seq, snap)

	switch {
	case !res.Committed:
		a.logger.Debug("stale refresh discarded", zap.Uint64("seq", seq), zap.String("account", addr.Hex()))
		a.observe(metrics.OutcomeStale, start)
	case !snap.Exists:
		a.observe(metrics.OutcomeNotFound, start)
	case warnings != nil:
		a.observe(metrics.OutcomeDegraded, start)
	default:
		a.observe(metrics.OutcomeOK, start)
	}
	return res, nil
}

// Fetch reads one snapshot without committing it. A failed or negative existence check yields
// the zeroed snapshot with Exists=false; secondary read failures zero their fields and are
// returned as warnings.
func (a *Aggregator) Fetch(ctx context.Context, r Reader, addr common.Address) (model.Snapshot, error) {
	snap := model.EmptySnapshot(addr)
	snap.FetchedAt = time.Now().UTC()

	record, err := r.UserRecord(ctx, addr)
	if err != nil || !record.Exists {
		if err != nil {
			a.logger.Debug("existence check failed", zap.String("account", addr.Hex()), zap.Error(err))
		}
		if balance, err := r.TokenBalance(ctx, addr); err == nil && balance != nil {
			snap.TokenBalance = balance
		} else if err != nil {
			a.warn("balanceOf", addr, err)
		}
		return snap, nil
	}

	snap.Exists = true
	snap.TotalDeposited = nonNil(record.TotalDeposited)
	snap.ReferralEarningsTotal = nonNil(record.ReferralEarnings)

	var (
		mu       sync.Mutex
		warnings error
	)
	fail := func(call string, err error) {
		a.warn(call, addr, err)
		mu.Lock()
		warnings = multierr.Append(warnings, &model.ReadError{Call: call, Err: err})
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(a.cfg.ParallelReads)

	var (
		summary contracts.Summary
		network contracts.Network
		timing  contracts.Timing
		quals   contracts.Qualification
		fee     contracts.FeeQuote
		balance *big.Int
	)
	g.Go(func() error {
		var err error
		if summary, err = r.Summary(ctx, addr); err != nil {
			fail("getUserSummary", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if network, err = r.Network(ctx, addr); err != nil {
			fail("getUserNetwork", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if timing, err = r.Timing(ctx, addr); err != nil {
			fail("getUserTime", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if quals, err = r.Qualification(ctx, addr); err != nil {
			fail("getQualifiedStatus", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if fee, err = r.WithdrawFee(ctx, addr); err != nil {
			fail("getWithdrawFee", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if balance, err = r.TokenBalance(ctx, addr); err != nil {
			fail("balanceOf", err)
		}
		return nil
	})
	_ = g.Wait()

	snap.ActiveDeposit = nonNil(summary.ActiveDeposit)
	snap.PendingROI = nonNil(summary.PendingROI)
	snap.PendingReferralBonus = nonNil(summary.PendingBonuses)
	snap.Rank = summary.Rank

	snap.DirectCount = network.Directs
	snap.QualifiedDirectCount = network.Qualified
	snap.TeamVolume = nonNil(network.TeamVolume)

	snap.DepositTimestamp = timing.DepositTime
	snap.LastClaimTimestamp = timing.LastClaim
	snap.DaysLockRemaining = timing.DaysLeft

	snap.QualifiedTierFlags = quals

	snap.WithdrawFeePercent = fee.Percent
	snap.WithdrawFeeAmount = nonNil(fee.Amount)

	snap.TokenBalance = nonNil(balance)

	return snap, warnings
}

// Snapshot returns the last committed snapshot.
func (a *Aggregator) Snapshot() (model.Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.hasResult
}

// Reset drops the committed snapshot and invalidates every in-flight refresh.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issued++
	a.current = model.Snapshot{}
	a.hasResult = false
}

func (a *Aggregator) begin() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issued++
	return a.issued
}

func (a *Aggregator) commit(seq uint64, snap model.Snapshot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.issued {
		return false
	}
	a.current = snap
	a.hasResult = true
	return true
}

func (a *Aggregator) warn(call string, addr common.Address, err error) {
	a.logger.Warn("read failed", zap.String("call", call), zap.String("account", addr.Hex()), zap.Error(err))
	if a.cfg.Observer != nil {
		a.cfg.Observer.ObserveReadWarning(call)
	}
}

func (a *Aggregator) observe(outcome string, start time.Time) {
	if a.cfg.Observer != nil {
		a.cfg.Observer.ObserveRefresh(outcome, time.Since(start))
	}
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
