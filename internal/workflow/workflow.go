// Package workflow runs the multi-step write sagas against the staking contract.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/contracts"
	"vaultScope/internal/model"
	"vaultScope/internal/notify"
	"vaultScope/internal/session"
)

// Kind names a workflow.
type Kind string

const (
	KindInvest        Kind = "invest"
	KindClaimROI      Kind = "claim_roi"
	KindClaimReferral Kind = "claim_referral"
	KindWithdraw      Kind = "withdraw"
)

// Navigation targets.
const NavigateDashboard = "dashboard"

var (
	DefaultMinimumInvestment = decimal.NewFromInt(10)
	DefaultMinimumClaim      = decimal.NewFromInt(1)
)

// Chain is the contract surface the workflows read and write through.
type Chain interface {
	Vault(ctx context.Context, from common.Address) (*types.Receipt, error)
	TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner common.Address) (*big.Int, error)
	Approve(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error)
	Invest(ctx context.Context, from common.Address, amount *big.Int, referrer common.Address) (*types.Receipt, error)
	Summary(ctx context.Context, user common.Address) (contracts.Summary, error)
	WithdrawROI(ctx context.Context, from common.Address) (*types.Receipt, error)
	WithdrawReferralBonuses(ctx context.Context, from common.Address) (*types.Receipt, error)
	WithdrawCapital(ctx context.Context, from common.Address) (*types.Receipt, error)
}

// Session exposes the current account.
type Session interface {
	Current() session.State
}

// Presenter disables and restores the control that triggered a workflow.
type Presenter interface {
	BeginAction(kind Kind)
	EndAction(kind Kind)
}

// Observer receives workflow telemetry.
type Observer interface {
	ObserveWorkflow(kind, outcome string)
	ObserveTransaction(method string, ok bool)
}

// Config for an Orchestrator.
type Config struct {
	MinimumInvestment decimal.Decimal
	MinimumClaim      decimal.Decimal
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Session Session
	// Handles returns the contract handles bound to the current provider.
	Handles   func() (Chain, error)
	Refresh   func(ctx context.Context, addr common.Address)
	Presenter Presenter
	Notifier  notify.Notifier
	Observer  Observer
}

// Outcome is what the presenter receives from a workflow.
type Outcome struct {
	Kind  Kind
	RunID string
	OK    bool
	// Message is the normalized text shown to the user.
	Message string
	Err     error

	ResetAmount string
	Navigate    string
	CloseDialog bool
}

// Orchestrator runs at most one workflow at a time.
type Orchestrator struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	busy   atomic.Bool
}

func NewOrchestrator(cfg Config, deps Deps, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinimumInvestment.IsZero() {
		cfg.MinimumInvestment = DefaultMinimumInvestment
	}
	if cfg.MinimumClaim.IsZero() {
		cfg.MinimumClaim = DefaultMinimumClaim
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Fanout{}
	}
	return &Orchestrator{cfg: cfg, deps: deps, logger: logger}
}

type run struct {
	o     *Orchestrator
	kind  Kind
	id    string
	from  common.Address
	token string
	chain Chain
}

// start acquires the single-workflow slot and captures the session. The returned release must be
// called exactly once.
func (o *Orchestrator) start(kind Kind) (*run, func(), *Outcome) {
	if !o.busy.CompareAndSwap(false, true) {
		out := o.reject(kind, "", model.ErrBusy, "Another transaction is in progress")
		return nil, nil, &out
	}
	if o.deps.Presenter != nil {
		o.deps.Presenter.BeginAction(kind)
	}
	release := func() {
		if o.deps.Presenter != nil {
			o.deps.Presenter.EndAction(kind)
		}
		o.busy.Store(false)
	}

	r := &run{o: o, kind: kind, id: uuid.NewString()}
	st := o.current()
	if !st.Connected {
		out := o.reject(kind, r.id, model.ErrNotConnected, "Please connect your wallet first")
		release()
		return nil, nil, &out
	}
	r.from = st.Address
	r.token = st.Token
	return r, release, nil
}

// Invest runs vault-refresh, balance check, exact approval and invest.
func (o *Orchestrator) Invest(ctx context.Context, amountInput, referrerInput string) Outcome {
	r, release, rejected := o.start(KindInvest)
	if rejected != nil {
		return *rejected
	}
	defer release()

	amount, err := model.ParseAmount(amountInput)
	switch {
	case err != nil && strings.TrimSpace(amountInput) != "":
		return o.reject(r.kind, r.id, err, "Invalid amount")
	case err != nil || amount.LessThan(o.cfg.MinimumInvestment):
		return o.reject(r.kind, r.id, model.ErrBelowMinimum, fmt.Sprintf("Minimum investment is %s USDT", o.cfg.MinimumInvestment))
	}
	raw, err := model.ToRaw(amount)
	if err != nil {
		return o.reject(r.kind, r.id, err, "Invalid amount")
	}
	referrer, err := ParseReferrer(referrerInput)
	if err != nil {
		return o.reject(r.kind, r.id, err, "Invalid referrer address")
	}
	if err := r.bind(); err != nil {
		return r.fail(err)
	}

	r.info("Step 1/3: Depositing to Venus Protocol")
	if err := r.checkSession(); err != nil {
		return r.fail(err)
	}
	if _, err := r.send("vault", func() (*types.Receipt, error) { return r.chain.Vault(ctx, r.from) }); err != nil {
		o.logger.Warn("vault refresh failed", zap.String("run_id", r.id), zap.Error(err))
	} else {
		r.notify(notify.LevelSuccess, "Venus deposit successful")
	}

	balance, err := r.chain.TokenBalance(ctx, r.from)
	if err != nil {
		return r.fail(fmt.Errorf("read balance: %w", err))
	}
	if balance.Cmp(raw) < 0 {
		return r.fail(fmt.Errorf("balance %s below %s: %w", balance, raw, model.ErrInsufficientBalance))
	}

	r.info("Step 2/3: Approving USDT")
	allowance, err := r.chain.Allowance(ctx, r.from)
	if err != nil {
		return r.fail(fmt.Errorf("read allowance: %w", err))
	}
	if allowance.Cmp(raw) < 0 {
		if err := r.checkSession(); err != nil {
			return r.fail(err)
		}
		if _, err := r.send("approve", func() (*types.Receipt, error) { return r.chain.Approve(ctx, r.from, raw) }); err != nil {
			return r.fail(fmt.Errorf("%w: %w", model.ErrApprovalFailed, err))
		}
		r.notify(notify.LevelSuccess, "USDT approved successfully")
	} else {
		r.info("USDT already approved")
	}

	r.info("Step 3/3: Confirming deposit")
	if err := r.checkSession(); err != nil {
		return r.fail(err)
	}
	if _, err := r.send("invest", func() (*types.Receipt, error) { return r.chain.Invest(ctx, r.from, raw, referrer) }); err != nil {
		return r.fail(err)
	}

	out := r.succeed(ctx, "Investment successful!")
	out.ResetAmount = o.cfg.MinimumInvestment.String()
	out.Navigate = NavigateDashboard
	return out
}

// ClaimROI withdraws accrued ROI after a local minimum pre-check.
func (o *Orchestrator) ClaimROI(ctx context.Context) Outcome {
	return o.claim(ctx, KindClaimROI, "Minimum %s USDT to claim ROI", "Claiming ROI", "ROI claimed successfully!",
		func(s contracts.Summary) *big.Int { return s.PendingROI },
		func(c Chain, from common.Address) (*types.Receipt, error) { return c.WithdrawROI(ctx, from) },
		"withdrawROI")
}

// ClaimReferralBonus withdraws accrued referral bonuses after a local minimum pre-check.
func (o *Orchestrator) ClaimReferralBonus(ctx context.Context) Outcome {
	return o.claim(ctx, KindClaimReferral, "Minimum %s USDT to claim referral bonus", "Claiming referral bonuses", "Referral bonuses claimed successfully!",
		func(s contracts.Summary) *big.Int { return s.PendingBonuses },
		func(c Chain, from common.Address) (*types.Receipt, error) { return c.WithdrawReferralBonuses(ctx, from) },
		"withdrawReferralBonuses")
}

func (o *Orchestrator) claim(
	ctx context.Context,
	kind Kind,
	minimumFormat, progress, success string,
	pending func(contracts.Summary) *big.Int,
	send func(Chain, common.Address) (*types.Receipt, error),
	method string,
) Outcome {
	r, release, rejected := o.start(kind)
	if rejected != nil {
		return *rejected
	}
	defer release()

	if err := r.bind(); err != nil {
		return r.fail(err)
	}

	// The contract's own revert stays authoritative; a failed pre-check read does not block.
	if summary, err := r.chain.Summary(ctx, r.from); err != nil {
		o.logger.Warn("pending amount pre-check failed", zap.String("run_id", r.id), zap.Error(err))
	} else if model.FromRaw(pending(summary)).LessThan(o.cfg.MinimumClaim) {
		return o.reject(kind, r.id, model.ErrBelowMinimum, fmt.Sprintf(minimumFormat, o.cfg.MinimumClaim))
	}

	r.info(progress)
	if err := r.checkSession(); err != nil {
		return r.fail(err)
	}
	if _, err := r.send(method, func() (*types.Receipt, error) { return send(r.chain, r.from) }); err != nil {
		return r.fail(err)
	}
	return r.succeed(ctx, success)
}

// WithdrawCapital withdraws the active deposit; the fee is applied by the contract.
func (o *Orchestrator) WithdrawCapital(ctx context.Context) Outcome {
	r, release, rejected := o.start(KindWithdraw)
	if rejected != nil {
		return *rejected
	}
	defer release()

	if err := r.bind(); err != nil {
		return r.fail(err)
	}
	r.info("Processing withdrawal")
	if err := r.checkSession(); err != nil {
		return r.fail(err)
	}
	if _, err := r.send("withdrawCapital", func() (*types.Receipt, error) { return r.chain.WithdrawCapital(ctx, r.from) }); err != nil {
		return r.fail(err)
	}
	out := r.succeed(ctx, "Withdrawal successful!")
	out.CloseDialog = true
	return out
}

func (o *Orchestrator) current() session.State {
	if o.deps.Session == nil {
		return session.State{}
	}
	return o.deps.Session.Current()
}

// reject reports a local refusal: no chain call was made for it.
func (o *Orchestrator) reject(kind Kind, runID string, err error, msg string) Outcome {
	level := notify.LevelError
	if errors.Is(err, model.ErrBelowMinimum) && kind != KindInvest {
		level = notify.LevelWarning
	}
	o.deps.Notifier.Notify(notify.Notification{Time: time.Now().UTC(), Level: level, Message: msg, Action: string(kind), RunID: runID})
	o.observe(kind, "rejected")
	return Outcome{Kind: kind, RunID: runID, Message: msg, Err: err}
}

func (o *Orchestrator) observe(kind Kind, outcome string) {
	if o.deps.Observer != nil {
		o.deps.Observer.ObserveWorkflow(string(kind), outcome)
	}
}

func (r *run) bind() error {
	if r.o.deps.Handles == nil {
		return model.ErrNotConnected
	}
	c, err := r.o.deps.Handles()
	if err != nil {
		return err
	}
	r.chain = c
	return nil
}

func (r *run) checkSession() error {
	st := r.o.current()
	if !st.Connected || st.Token != r.token || st.Address != r.from {
		return model.ErrSessionChanged
	}
	return nil
}

func (r *run) send(method string, fn func() (*types.Receipt, error)) (*types.Receipt, error) {
	r.o.logger.Info("send transaction", zap.String("run_id", r.id), zap.String("method", method), zap.String("from", r.from.Hex()))
	receipt, err := fn()
	if r.o.deps.Observer != nil {
		r.o.deps.Observer.ObserveTransaction(method, err == nil)
	}
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		r.o.logger.Info("transaction mined", zap.String("run_id", r.id), zap.String("method", method), zap.String("tx", receipt.TxHash.Hex()))
	}
	return receipt, nil
}

func (r *run) info(msg string) {
	r.notify(notify.LevelInfo, msg)
}

func (r *run) notify(level notify.Level, msg string) {
	r.o.deps.Notifier.Notify(notify.Notification{Time: time.Now().UTC(), Level: level, Message: msg, Action: string(r.kind), RunID: r.id})
}

func (r *run) fail(err error) Outcome {
	msg := Normalize(r.kind, err)
	r.o.logger.Warn("workflow failed", zap.String("run_id", r.id), zap.String("kind", string(r.kind)), zap.Error(err))
	r.notify(notify.LevelError, msg)
	r.o.observe(r.kind, "failed")
	return Outcome{Kind: r.kind, RunID: r.id, Message: msg, Err: err}
}

func (r *run) succeed(ctx context.Context, msg string) Outcome {
	r.notify(notify.LevelSuccess, msg)
	r.o.observe(r.kind, "ok")
	if r.o.deps.Refresh != nil {
		r.o.deps.Refresh(ctx, r.from)
	}
	return Outcome{Kind: r.kind, RunID: r.id, OK: true, Message: msg}
}
