package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultScope/internal/chain"
	"vaultScope/internal/contracts"
	"vaultScope/internal/model"
)

// PassphrasePrompt asks the user to unlock account. An empty answer is a rejection.
type PassphrasePrompt func(account common.Address) (string, error)

// KeystoreConfig configures a keystore-backed wallet.
type KeystoreConfig struct {
	Dir        string
	Account    string
	Passphrase string
	Prompt     PassphrasePrompt
	// Networks are known to the wallet before any AddChain request.
	Networks []Network
	// StartChainID selects the network the wallet starts on.
	StartChainID *big.Int
	LightScrypt  bool
}

// Keystore is a Wallet backed by an encrypted key directory.
type Keystore struct {
	cfg    KeystoreConfig
	ks     *keystore.KeyStore
	logger *zap.Logger

	mu         sync.Mutex
	known      map[string]Network
	current    Network
	client     *chain.Client
	authorized []common.Address

	events chan Event
}

// OpenKeystore opens the key directory and dials the starting network.
func OpenKeystore(ctx context.Context, cfg KeystoreConfig, logger *zap.Logger) (*Keystore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("keystore dir: %w", model.ErrNoProvider)
	}
	scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
	if cfg.LightScrypt {
		scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
	}
	ks := keystore.NewKeyStore(cfg.Dir, scryptN, scryptP)
	if len(ks.Accounts()) == 0 {
		return nil, fmt.Errorf("no accounts in %s: %w", cfg.Dir, model.ErrNoProvider)
	}

	w := &Keystore{
		cfg:    cfg,
		ks:     ks,
		logger: logger,
		known:  make(map[string]Network),
		events: make(chan Event, 8),
	}
	for _, n := range cfg.Networks {
		if n.ChainID == nil {
			continue
		}
		w.known[n.ChainID.String()] = n
	}

	start, ok := w.known[chainKey(cfg.StartChainID)]
	if !ok {
		if len(cfg.Networks) == 0 {
			return nil, fmt.Errorf("no networks configured: %w", model.ErrNoProvider)
		}
		start = cfg.Networks[0]
	}
	if err := w.dial(ctx, start); err != nil {
		return nil, err
	}
	return w, nil
}

// ChainID asks the current endpoint for its chain id.
func (w *Keystore) ChainID(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	client := w.client
	w.mu.Unlock()
	if client == nil {
		return nil, model.ErrNoProvider
	}
	return client.GetChainID(ctx)
}

// SwitchChain moves the wallet to a known network. Unknown networks fail with code 4902.
func (w *Keystore) SwitchChain(ctx context.Context, chainID *big.Int) error {
	w.mu.Lock()
	network, ok := w.known[chainKey(chainID)]
	sameChain := ok && w.current.ChainID.Cmp(chainID) == 0
	w.mu.Unlock()

	if !ok {
		return &RPCError{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("unrecognized chain id %s", chainKey(chainID))}
	}
	if sameChain {
		return nil
	}
	if err := w.dial(ctx, network); err != nil {
		return err
	}
	w.emit(Event{Kind: EventChainChanged, ChainID: new(big.Int).Set(chainID)})
	return nil
}

// AddChain registers a network and switches to it. The endpoint must report the declared chain id.
func (w *Keystore) AddChain(ctx context.Context, network Network) error {
	if network.ChainID == nil || network.RPCURL == "" {
		return &RPCError{Code: -32602, Message: "network requires chain id and rpc url"}
	}
	probe, err := chain.NewClient(ctx, network.RPCURL, chain.ModeActive)
	if err != nil {
		return fmt.Errorf("dial %s: %w", network.Name, err)
	}
	reported, err := probe.GetChainID(ctx)
	probe.Close()
	if err != nil {
		return fmt.Errorf("probe %s: %w", network.Name, err)
	}
	if reported.Cmp(network.ChainID) != 0 {
		return fmt.Errorf("endpoint reports chain %s, want %s: %w", reported, network.ChainID, model.ErrNetworkMismatch)
	}

	w.mu.Lock()
	w.known[network.ChainID.String()] = network
	w.mu.Unlock()
	w.logger.Info("network added", zap.String("name", network.Name), zap.String("chain_id", network.HexChainID()))

	return w.SwitchChain(ctx, network.ChainID)
}

// RequestAccounts unlocks the configured account, prompting for a passphrase when needed.
func (w *Keystore) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	account, err := w.selectAccount()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if len(w.authorized) > 0 && w.authorized[0] == account.Address {
		current := append([]common.Address(nil), w.authorized...)
		w.mu.Unlock()
		return current, nil
	}
	w.mu.Unlock()

	passphrase := w.cfg.Passphrase
	if passphrase == "" && w.cfg.Prompt != nil {
		passphrase, err = w.cfg.Prompt(account.Address)
		if err != nil {
			return nil, &RPCError{Code: CodeUserRejected, Message: err.Error()}
		}
	}
	if passphrase == "" {
		return nil, &RPCError{Code: CodeUserRejected, Message: "user rejected the request"}
	}
	if err := w.ks.Unlock(account, passphrase); err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, &RPCError{Code: CodeUserRejected, Message: "could not unlock account"}
		}
		return nil, fmt.Errorf("unlock %s: %w", account.Address.Hex(), err)
	}

	w.mu.Lock()
	previous := w.authorized
	w.authorized = []common.Address{account.Address}
	current := append([]common.Address(nil), w.authorized...)
	w.mu.Unlock()

	if len(previous) == 0 || previous[0] != account.Address {
		w.emit(Event{Kind: EventAccountsChanged, Accounts: current})
	}
	return current, nil
}

// Accounts returns the authorized accounts without prompting. A configured passphrase counts as a
// standing authorization for the configured account.
func (w *Keystore) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	authorized := append([]common.Address(nil), w.authorized...)
	w.mu.Unlock()
	if len(authorized) > 0 || w.cfg.Passphrase == "" {
		return authorized, nil
	}

	account, err := w.selectAccount()
	if err != nil {
		return nil, nil
	}
	if err := w.ks.Unlock(account, w.cfg.Passphrase); err != nil {
		w.logger.Debug("standing authorization failed", zap.String("account", account.Address.Hex()), zap.Error(err))
		return nil, nil
	}
	w.mu.Lock()
	w.authorized = []common.Address{account.Address}
	w.mu.Unlock()
	return []common.Address{account.Address}, nil
}

// Revoke locks every authorized account and announces an empty account list.
func (w *Keystore) Revoke() {
	w.mu.Lock()
	authorized := w.authorized
	w.authorized = nil
	w.mu.Unlock()

	for _, addr := range authorized {
		if err := w.ks.Lock(addr); err != nil {
			w.logger.Warn("lock account failed", zap.String("account", addr.Hex()), zap.Error(err))
		}
	}
	if len(authorized) > 0 {
		w.emit(Event{Kind: EventAccountsChanged})
	}
}

// Backend returns the current network connection.
func (w *Keystore) Backend() chain.Backend {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client == nil {
		return nil
	}
	return w.client.Backend()
}

// Transactor signs with the keystore for the current network.
func (w *Keystore) Transactor() contracts.Transactor {
	return func(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
		chainID, err := w.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("chain id: %w", err)
		}
		opts, err := bind.NewKeyStoreTransactorWithChainID(w.ks, accounts.Account{Address: from}, chainID)
		if err != nil {
			if errors.Is(err, keystore.ErrLocked) {
				return nil, &RPCError{Code: CodeUnauthorized, Message: "account is locked"}
			}
			return nil, err
		}
		opts.Context = ctx
		return opts, nil
	}
}

// Events delivers provider notifications. Slow consumers miss events rather than block the wallet.
func (w *Keystore) Events() <-chan Event {
	return w.events
}

// Close drops the network connection and announces a disconnect.
func (w *Keystore) Close() {
	w.mu.Lock()
	client := w.client
	w.client = nil
	w.mu.Unlock()
	if client != nil {
		client.Close()
	}
	w.emit(Event{Kind: EventDisconnect})
}

func (w *Keystore) selectAccount() (accounts.Account, error) {
	all := w.ks.Accounts()
	if len(all) == 0 {
		return accounts.Account{}, model.ErrNoProvider
	}
	if w.cfg.Account == "" {
		return all[0], nil
	}
	if !common.IsHexAddress(w.cfg.Account) {
		return accounts.Account{}, fmt.Errorf("invalid account %q", w.cfg.Account)
	}
	want := common.HexToAddress(w.cfg.Account)
	for _, a := range all {
		if a.Address == want {
			return a, nil
		}
	}
	return accounts.Account{}, fmt.Errorf("account %s: %w", want.Hex(), accounts.ErrUnknownAccount)
}

func (w *Keystore) dial(ctx context.Context, network Network) error {
	client, err := chain.NewClient(ctx, network.RPCURL, chain.ModeActive)
	if err != nil {
		return fmt.Errorf("dial %s: %w", network.Name, err)
	}
	w.mu.Lock()
	old := w.client
	w.client = client
	w.current = network
	w.mu.Unlock()
	if old != nil {
		old.Close()
	}
	w.logger.Debug("wallet network", zap.String("name", network.Name), zap.String("chain_id", network.HexChainID()))
	return nil
}

func (w *Keystore) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("provider event dropped", zap.Stringer("kind", ev.Kind))
	}
}

func chainKey(id *big.Int) string {
	if id == nil {
		return ""
	}
	return id.String()
}
