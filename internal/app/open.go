package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/model"
	"vaultScope/internal/notify"
	"vaultScope/internal/session"
	"vaultScope/internal/storage/postgres"
	"vaultScope/internal/wallet"
	"vaultScope/internal/workflow"
)

// flagName keys the connection flag row in Postgres.
const flagName = "wallet_connected"

// OpenOptions are the interactive pieces supplied by the command line.
type OpenOptions struct {
	Prompt     wallet.PassphrasePrompt
	Notifier   notify.Notifier
	Presenter  workflow.Presenter
	OnSnapshot func(model.Snapshot)
}

// Open dials the passive endpoint, opens the keystore wallet and the flag store, and builds the App.
func Open(ctx context.Context, cfg config.Config, opts OpenOptions, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	passive, err := chain.Dial(ctx, cfg.RPCURL, chain.ModePassive, chain.DialOptions{
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
	}, logger.Named("chain"))
	if err != nil {
		return nil, err
	}
	closers = append(closers, passive.Close)

	w, err := openWallet(ctx, cfg, opts.Prompt, logger)
	if err != nil {
		cleanup()
		return nil, err
	}
	if w != nil {
		closers = append(closers, w.Close)
	}

	flags, closeFlags, err := openFlagStore(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, err
	}
	closers = append(closers, closeFlags)

	sinks := notify.Fanout{notify.NewLogger(logger)}
	if opts.Notifier != nil {
		sinks = append(sinks, opts.Notifier)
	}
	if cfg.Journal != "" {
		journal, err := notify.OpenJSONL(cfg.Journal, logger)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, func() {
			if err := journal.Close(); err != nil {
				logger.Warn("close journal", zap.Error(err))
			}
		})
		sinks = append(sinks, journal)
	}

	deps := Deps{
		Passive:    passive.Backend(),
		Flags:      flags,
		Notifier:   sinks,
		Presenter:  opts.Presenter,
		OnSnapshot: opts.OnSnapshot,
	}
	if w != nil {
		deps.Wallet = w
	}

	a, err := New(cfg, deps, logger)
	if err != nil {
		cleanup()
		return nil, err
	}
	for _, fn := range closers {
		a.OnClose(fn)
	}
	return a, nil
}

// openWallet returns nil without error when no keystore is configured.
func openWallet(ctx context.Context, cfg config.Config, prompt wallet.PassphrasePrompt, logger *zap.Logger) (*wallet.Keystore, error) {
	w, err := wallet.OpenKeystore(ctx, wallet.KeystoreConfig{
		Dir:          cfg.KeystoreDir,
		Account:      cfg.Account,
		Passphrase:   cfg.Passphrase,
		Prompt:       prompt,
		Networks:     []wallet.Network{cfg.Network()},
		StartChainID: big.NewInt(cfg.ChainID),
		LightScrypt:  cfg.LightScrypt,
	}, logger.Named("wallet"))
	if errors.Is(err, model.ErrNoProvider) {
		logger.Info("no wallet provider", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open keystore: %w", err)
	}
	return w, nil
}

func openFlagStore(ctx context.Context, cfg config.Config) (session.FlagStore, func(), error) {
	if cfg.PGDSN == "" {
		return &session.FileFlagStore{Path: cfg.StateFile}, func() {}, nil
	}
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &session.DBFlagStore{Store: store, Name: flagName}, store.Close, nil
}
