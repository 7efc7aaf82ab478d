// Package app wires the session, aggregator and workflows around one explicit application state.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultScope/internal/aggregate"
	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/contracts"
	"vaultScope/internal/metrics"
	"vaultScope/internal/model"
	"vaultScope/internal/notify"
	"vaultScope/internal/projection"
	"vaultScope/internal/session"
	"vaultScope/internal/view"
	"vaultScope/internal/wallet"
	"vaultScope/internal/workflow"
)

// Handles is everything the application calls on a set of bound contracts.
type Handles interface {
	aggregate.Reader
	workflow.Chain
	Mode() chain.Mode
	PoolLiquidity(ctx context.Context) (*big.Int, error)
	RankRequirement(ctx context.Context, slot uint64) (contracts.RankRequirement, error)
}

// Binder builds handles for one connection.
type Binder func(backend chain.Backend, mode chain.Mode, transactor contracts.Transactor) (Handles, error)

// Deps are the collaborators of an App.
type Deps struct {
	// Passive is the read-only connection used while no wallet is bound.
	Passive chain.Backend
	// Wallet is nil when no provider is available.
	Wallet    wallet.Wallet
	Flags     session.FlagStore
	Notifier  notify.Notifier
	Presenter workflow.Presenter
	// Bind defaults to ContractBinder.
	Bind Binder
	// OnSnapshot receives every committed snapshot.
	OnSnapshot func(model.Snapshot)
}

// App is the single application state: current handles, session, snapshot and workflows.
type App struct {
	cfg    config.Config
	deps   Deps
	logger *zap.Logger

	mu      sync.RWMutex
	handles Handles

	aggregator *aggregate.Aggregator
	session    *session.Manager
	workflows  *workflow.Orchestrator

	closers []func()
}

// ContractBinder binds the configured contracts with contracts.Bind.
func ContractBinder(cfg config.Config) (Binder, error) {
	addrs, err := cfg.Addresses()
	if err != nil {
		return nil, err
	}
	bindCfg := contracts.Config{Addresses: addrs, VaultGasLimit: cfg.VaultGasLimit}
	return func(backend chain.Backend, mode chain.Mode, transactor contracts.Transactor) (Handles, error) {
		return contracts.Bind(backend, mode, bindCfg, transactor)
	}, nil
}

// New builds the application around already-opened dependencies and binds passive handles.
func New(cfg config.Config, deps Deps, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Bind == nil {
		binder, err := ContractBinder(cfg)
		if err != nil {
			return nil, err
		}
		deps.Bind = binder
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLogger(logger)
	}

	a := &App{cfg: cfg, deps: deps, logger: logger}
	if err := a.bind(context.Background(), nil); err != nil {
		return nil, fmt.Errorf("bind passive handles: %w", err)
	}

	observer := metrics.Vault()
	a.aggregator = aggregate.NewAggregator(aggregate.Config{
		ParallelReads: cfg.ParallelReads,
		Observer:      observer,
	}, logger.Named("aggregate"))

	a.session = session.NewManager(session.Config{
		Network:         cfg.Network(),
		RefreshInterval: cfg.RefreshInterval,
	}, deps.Wallet, deps.Flags, session.Hooks{
		Bind:    a.bind,
		Refresh: a.refreshHook,
		Reset:   a.aggregator.Reset,
	}, deps.Notifier, logger.Named("session"))

	a.workflows = workflow.NewOrchestrator(workflow.Config{}, workflow.Deps{
		Session:   a.session,
		Handles:   a.activeHandles,
		Refresh:   a.refreshHook,
		Presenter: deps.Presenter,
		Notifier:  deps.Notifier,
		Observer:  observer,
	}, logger.Named("workflow"))

	return a, nil
}

// Session returns the account session.
func (a *App) Session() *session.Manager {
	return a.session
}

// Workflows returns the transaction orchestrator.
func (a *App) Workflows() *workflow.Orchestrator {
	return a.workflows
}

// Notify sends a notification through the application's sinks.
func (a *App) Notify(level notify.Level, msg string) {
	a.deps.Notifier.Notify(notify.Notification{Level: level, Message: msg})
}

// Refresh re-aggregates the connected account's snapshot.
func (a *App) Refresh(ctx context.Context) (aggregate.Result, error) {
	st := a.session.Current()
	if !st.Connected {
		return aggregate.Result{}, model.ErrNotConnected
	}
	return a.refresh(ctx, st.Address)
}

// Snapshot returns the last committed snapshot.
func (a *App) Snapshot() (model.Snapshot, bool) {
	return a.aggregator.Snapshot()
}

// Dashboard renders the last committed snapshot.
func (a *App) Dashboard() (view.Dashboard, bool) {
	snap, ok := a.aggregator.Snapshot()
	if !ok {
		return view.Dashboard{}, false
	}
	return view.BuildDashboard(snap), true
}

// WithdrawConfirmation computes the figures shown before a capital withdrawal.
func (a *App) WithdrawConfirmation() (view.WithdrawConfirmation, error) {
	snap, ok := a.aggregator.Snapshot()
	if !ok {
		return view.WithdrawConfirmation{}, model.ErrNotConnected
	}
	return view.BuildWithdrawConfirmation(snap)
}

// ReferralLink returns the connected account's referral link.
func (a *App) ReferralLink() (string, error) {
	st := a.session.Current()
	if !st.Connected {
		return "", model.ErrNotConnected
	}
	if a.cfg.ReferralBase == "" {
		return "", fmt.Errorf("referral base url is not configured")
	}
	return view.ReferralLink(a.cfg.ReferralBase, st.Address)
}

// Stats reads the lending pool's available liquidity.
func (a *App) Stats(ctx context.Context) (*big.Int, string, error) {
	h := a.current()
	cash, err := h.PoolLiquidity(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("pool liquidity: %w", err)
	}
	return cash, view.TVL(cash), nil
}

// CheckRates compares every on-chain rank boost with the local boost table.
func (a *App) CheckRates(ctx context.Context) ([]projection.BoostDrift, error) {
	h := a.current()
	onChain := make(map[uint8]*big.Int, model.MaxRank)
	for rank := uint8(1); rank <= model.MaxRank; rank++ {
		req, err := h.RankRequirement(ctx, uint64(rank-1))
		if err != nil {
			return nil, fmt.Errorf("ranks(%d): %w", rank-1, err)
		}
		onChain[rank] = req.ROIBoost
	}
	drifts := projection.CheckBoosts(onChain)
	for _, d := range drifts {
		a.logger.Warn("rank boost drift",
			zap.String("rank", model.RankByIndex(d.Rank).Name),
			zap.Int64("local_bp", d.Local),
			zap.String("on_chain_bp", d.OnChain.String()),
		)
	}
	return drifts, nil
}

// OnClose registers cleanup run by Close in reverse order.
func (a *App) OnClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close stops the refresh timer and releases opened resources.
func (a *App) Close() {
	a.session.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// bind rebuilds the handles. A nil wallet selects the passive connection.
func (a *App) bind(_ context.Context, w wallet.Wallet) error {
	var (
		h   Handles
		err error
	)
	if w == nil {
		h, err = a.deps.Bind(a.deps.Passive, chain.ModePassive, nil)
	} else {
		h, err = a.deps.Bind(w.Backend(), chain.ModeActive, w.Transactor())
	}
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.handles = h
	a.mu.Unlock()
	metrics.Vault().SetConnected(w != nil)
	a.logger.Debug("handles bound", zap.Stringer("mode", h.Mode()))
	return nil
}

func (a *App) current() Handles {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.handles
}

func (a *App) activeHandles() (workflow.Chain, error) {
	h := a.current()
	if h == nil || h.Mode() != chain.ModeActive {
		return nil, model.ErrNotConnected
	}
	return h, nil
}

func (a *App) refreshHook(ctx context.Context, addr common.Address) {
	if _, err := a.refresh(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("refresh failed", zap.String("address", addr.Hex()), zap.Error(err))
	}
}

func (a *App) refresh(ctx context.Context, addr common.Address) (aggregate.Result, error) {
	res, err := a.aggregator.Refresh(ctx, a.current(), addr)
	if err != nil {
		return res, err
	}
	if res.Warnings != nil {
		a.logger.Warn("snapshot degraded", zap.String("address", addr.Hex()), zap.Error(res.Warnings))
	}
	if res.Committed && a.deps.OnSnapshot != nil {
		a.deps.OnSnapshot(res.Snapshot)
	}
	return res, nil
}
