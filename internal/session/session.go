// Package session tracks the connected account, reacts to provider notifications and owns the
// periodic refresh timer.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultScope/internal/model"
	"vaultScope/internal/notify"
	"vaultScope/internal/wallet"
)

// DefaultRefreshInterval is the snapshot refresh period while connected.
const DefaultRefreshInterval = 30 * time.Second

// State is a copy of the current session.
type State struct {
	Address   common.Address
	Connected bool
	ChainID   *big.Int
	// Token changes on every connect, account re-bind, disconnect and reload.
	Token string
}

// Hooks connect the session to the rest of the application.
type Hooks struct {
	// Bind rebuilds every contract handle. A nil wallet selects the passive provider.
	Bind func(ctx context.Context, w wallet.Wallet) error
	// Refresh re-aggregates the snapshot for addr.
	Refresh func(ctx context.Context, addr common.Address)
	// Reset drops any derived snapshot.
	Reset func()
}

// Config for a Manager.
type Config struct {
	// Network is the chain the wallet must be on.
	Network         wallet.Network
	RefreshInterval time.Duration
}

// Manager owns the session state. Connect, Disconnect, Reload and provider events are serialized.
type Manager struct {
	cfg      Config
	wallet   wallet.Wallet
	flags    FlagStore
	hooks    Hooks
	notifier notify.Notifier
	logger   *zap.Logger

	opMu sync.Mutex

	mu    sync.RWMutex
	state State

	timer        *refreshTimer
	activeTimers atomic.Int32
}

type refreshTimer struct {
	stop chan struct{}
	done chan struct{}
}

// NewManager creates a disconnected session. A nil wallet means no provider is available.
func NewManager(cfg Config, w wallet.Wallet, flags FlagStore, hooks Hooks, notifier notify.Notifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if notifier == nil {
		notifier = notify.Fanout{}
	}
	return &Manager{
		cfg:      cfg,
		wallet:   w,
		flags:    flags,
		hooks:    hooks,
		notifier: notifier,
		logger:   logger,
		state:    State{Token: uuid.NewString()},
	}
}

// Current returns a copy of the session state.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.state
	if st.ChainID != nil {
		st.ChainID = new(big.Int).Set(st.ChainID)
	}
	return st
}

// Token returns the current session token.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

// ActiveTimers reports how many refresh timers are running.
func (m *Manager) ActiveTimers() int {
	return int(m.activeTimers.Load())
}

// Connect ensures the wallet is on the required network, requests account authorization and
// binds the session to the first account.
func (m *Manager) Connect(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.connectLocked(ctx); err != nil {
		m.notify(notify.LevelError, connectFailureMessage(err))
		return err
	}
	m.notify(notify.LevelSuccess, "Wallet connected!")
	return nil
}

// Disconnect clears local session state. Wallets have no remote disconnect.
func (m *Manager) Disconnect(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.disconnectLocked(ctx)
}

// SilentReconnect connects without prompting when the flag is set and the wallet already
// authorized an account. Failures leave the session disconnected and are only logged.
func (m *Manager) SilentReconnect(ctx context.Context) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.silentReconnectLocked(ctx)
}

// Reload discards all session state and handles, then attempts a silent reconnect.
func (m *Manager) Reload(ctx context.Context) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.reloadLocked(ctx)
}

// HandleEvent applies one provider notification.
func (m *Manager) HandleEvent(ctx context.Context, ev wallet.Event) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.logger.Debug("provider event", zap.Stringer("kind", ev.Kind), zap.Int("accounts", len(ev.Accounts)))
	switch ev.Kind {
	case wallet.EventAccountsChanged:
		m.accountsChangedLocked(ctx, ev.Accounts)
	case wallet.EventChainChanged:
		m.reloadLocked(ctx)
	case wallet.EventDisconnect:
		m.disconnectLocked(ctx)
	}
}

// Run applies provider notifications until ctx is done or the wallet stops sending.
func (m *Manager) Run(ctx context.Context) {
	if m.wallet == nil {
		<-ctx.Done()
		return
	}
	events := m.wallet.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.HandleEvent(ctx, ev)
		}
	}
}

// Close stops the refresh timer without touching the persisted flag.
func (m *Manager) Close() {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.stopTimerLocked()
}

func (m *Manager) connectLocked(ctx context.Context) error {
	if m.wallet == nil {
		return model.ErrNoProvider
	}
	if err := m.ensureNetwork(ctx); err != nil {
		return err
	}

	accounts, err := m.wallet.RequestAccounts(ctx)
	if err != nil {
		return fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("request accounts: %w", model.ErrUserRejected)
	}

	if err := m.bindLocked(ctx, accounts[0]); err != nil {
		return err
	}
	if m.flags != nil {
		if err := m.flags.Save(ctx, true); err != nil {
			m.logger.Warn("save session flag failed", zap.Error(err))
		}
	}
	m.logger.Info("wallet connected", zap.String("account", accounts[0].Hex()))

	m.refresh(ctx, accounts[0])
	m.startTimerLocked(ctx)
	return nil
}

func (m *Manager) ensureNetwork(ctx context.Context) error {
	want := m.cfg.Network.ChainID
	if want == nil {
		return nil
	}
	current, err := m.wallet.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("query chain id: %w", err)
	}
	if current != nil && current.Cmp(want) == 0 {
		return nil
	}

	err = m.wallet.SwitchChain(ctx, want)
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrUserRejected) {
		return fmt.Errorf("switch chain: %w", err)
	}
	if wallet.ErrorCode(err) != wallet.CodeUnrecognizedChain {
		return fmt.Errorf("%w: switch to %s: %v", model.ErrNetworkMismatch, m.cfg.Network.HexChainID(), err)
	}

	m.logger.Info("registering network", zap.String("name", m.cfg.Network.Name), zap.String("chain_id", m.cfg.Network.HexChainID()))
	if err := m.wallet.AddChain(ctx, m.cfg.Network); err != nil {
		if errors.Is(err, model.ErrUserRejected) {
			return fmt.Errorf("add chain: %w", err)
		}
		return fmt.Errorf("%w: add %s: %v", model.ErrNetworkMismatch, m.cfg.Network.HexChainID(), err)
	}
	if err := m.wallet.SwitchChain(ctx, want); err != nil {
		if errors.Is(err, model.ErrUserRejected) {
			return fmt.Errorf("switch chain: %w", err)
		}
		return fmt.Errorf("%w: switch to %s: %v", model.ErrNetworkMismatch, m.cfg.Network.HexChainID(), err)
	}
	return nil
}

// bindLocked rebuilds handles against the wallet and moves the session to addr with a new token.
func (m *Manager) bindLocked(ctx context.Context, addr common.Address) error {
	if m.hooks.Bind != nil {
		if err := m.hooks.Bind(ctx, m.wallet); err != nil {
			return fmt.Errorf("bind contracts: %w", err)
		}
	}
	m.mu.Lock()
	m.state = State{
		Address:   addr,
		Connected: true,
		ChainID:   m.cfg.Network.ChainID,
		Token:     uuid.NewString(),
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) disconnectLocked(ctx context.Context) {
	m.stopTimerLocked()
	m.clearLocked(ctx)
	if m.flags != nil {
		if err := m.flags.Clear(ctx); err != nil {
			m.logger.Warn("clear session flag failed", zap.Error(err))
		}
	}
	m.logger.Info("wallet disconnected")
}

// clearLocked resets state and snapshot and falls back to passive handles.
func (m *Manager) clearLocked(ctx context.Context) {
	m.mu.Lock()
	m.state = State{Token: uuid.NewString()}
	m.mu.Unlock()

	if m.hooks.Reset != nil {
		m.hooks.Reset()
	}
	if m.hooks.Bind != nil {
		if err := m.hooks.Bind(ctx, nil); err != nil {
			m.logger.Warn("bind passive handles failed", zap.Error(err))
		}
	}
}

func (m *Manager) reloadLocked(ctx context.Context) bool {
	m.logger.Info("reloading session")
	m.stopTimerLocked()
	m.clearLocked(ctx)
	return m.silentReconnectLocked(ctx)
}

func (m *Manager) silentReconnectLocked(ctx context.Context) bool {
	if m.wallet == nil || m.flags == nil {
		return false
	}
	connected, err := m.flags.Load(ctx)
	if err != nil {
		m.logger.Warn("load session flag failed", zap.Error(err))
		return false
	}
	if !connected {
		return false
	}
	accounts, err := m.wallet.Accounts(ctx)
	if err != nil {
		m.logger.Debug("auto-connect failed", zap.Error(err))
		return false
	}
	if len(accounts) == 0 {
		return false
	}
	if err := m.connectLocked(ctx); err != nil {
		m.logger.Warn("auto-connect failed", zap.Error(err))
		return false
	}
	m.notify(notify.LevelSuccess, "Wallet connected!")
	return true
}

func (m *Manager) accountsChangedLocked(ctx context.Context, accounts []common.Address) {
	if len(accounts) == 0 {
		m.disconnectLocked(ctx)
		return
	}
	current := m.Current()
	if current.Connected && accounts[0] == current.Address {
		return
	}
	if err := m.bindLocked(ctx, accounts[0]); err != nil {
		m.logger.Warn("rebind after account change failed", zap.Error(err))
		return
	}
	m.logger.Info("account changed", zap.String("account", accounts[0].Hex()))
	m.refresh(ctx, accounts[0])
	m.startTimerLocked(ctx)
}

func (m *Manager) refresh(ctx context.Context, addr common.Address) {
	if m.hooks.Refresh != nil {
		m.hooks.Refresh(ctx, addr)
	}
}

// startTimerLocked replaces any running timer. Each tick refreshes the then-current account.
func (m *Manager) startTimerLocked(ctx context.Context) {
	m.stopTimerLocked()

	t := &refreshTimer{stop: make(chan struct{}), done: make(chan struct{})}
	m.timer = t
	m.activeTimers.Add(1)

	go func() {
		defer close(t.done)
		defer m.activeTimers.Add(-1)

		ticker := time.NewTicker(m.cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case <-ticker.C:
				st := m.Current()
				if st.Connected {
					m.refresh(ctx, st.Address)
				}
			}
		}
	}()
}

func (m *Manager) stopTimerLocked() {
	if m.timer == nil {
		return
	}
	close(m.timer.stop)
	<-m.timer.done
	m.timer = nil
}

func (m *Manager) notify(level notify.Level, msg string) {
	m.notifier.Notify(notify.Notification{Time: time.Now().UTC(), Level: level, Message: msg, Action: "connect"})
}

func connectFailureMessage(err error) string {
	if errors.Is(err, model.ErrNoProvider) {
		return "No wallet found. Configure a keystore to connect."
	}
	return "Connection failed: " + err.Error()
}
