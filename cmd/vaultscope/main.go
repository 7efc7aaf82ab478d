package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"vaultScope/internal/app"
	"vaultScope/internal/config"
	"vaultScope/internal/notify"
	"vaultScope/internal/wallet"
)

func main() {
	root := &cobra.Command{
		Use:          "vaultscope",
		Short:        "Staking vault client for BNB Smart Chain",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", "", "BSC RPC URL")
	flags.Int64("chain-id", 56, "required chain id")
	flags.String("staking-address", "", "staking contract address")
	flags.String("token-address", config.DefaultTokenAddress, "USDT token address")
	flags.String("pool-address", config.DefaultPoolAddress, "lending pool vToken address")
	flags.String("keystore", "", "keystore directory holding the wallet account")
	flags.String("account", "", "account address inside the keystore (default: first)")
	flags.String("state-file", "./data/session.json", "connection flag file")
	flags.String("pg-dsn", "", "Postgres DSN for the connection flag (overrides --state-file)")
	flags.String("journal", "", "optional JSONL notification journal")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")

	root.AddCommand(
		newStatsCmd(),
		newStatusCmd(),
		newInvestCmd(),
		newClaimCmd("claim-roi", "Claim accrued ROI"),
		newClaimCmd("claim-referral", "Claim pending referral bonuses"),
		newWithdrawCmd(),
		newProjectCmd(),
		newCheckRatesCmd(),
		newWatchCmd(),
		newDisconnectCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime is what every chain-facing command needs.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	app    *app.App
	out    io.Writer
}

func (r *runtime) close() {
	r.app.Close()
	_ = r.logger.Sync()
}

// setup loads config, builds the logger and opens the application under a signal-aware context.
func setup(cmd *cobra.Command, opts app.OpenOptions) (context.Context, *runtime, func(), error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	out := cmd.OutOrStdout()
	if opts.Notifier == nil {
		opts.Notifier = notify.NewConsole(cmd.ErrOrStderr())
	}
	if opts.Presenter == nil {
		opts.Presenter = newConsolePresenter(cmd.ErrOrStderr())
	}
	if opts.Prompt == nil {
		opts.Prompt = wallet.TerminalPrompt(int(os.Stdin.Fd()), cmd.ErrOrStderr())
	}

	a, err := app.Open(ctx, cfg, opts, logger)
	if err != nil {
		stop()
		_ = logger.Sync()
		return nil, nil, nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger, app: a, out: out}
	return ctx, rt, func() {
		rt.close()
		stop()
	}, nil
}

// connect reuses a standing authorization when the flag is set, otherwise asks the wallet.
func (r *runtime) connect(ctx context.Context) error {
	if r.app.Session().SilentReconnect(ctx) {
		return nil
	}
	if err := r.app.Session().Connect(ctx); err != nil {
		return fmt.Errorf("connect wallet: %w", err)
	}
	return nil
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file == "" {
		return cfg.Build()
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), sink, cfg.Level)
	return zap.New(core, zap.AddCaller()), nil
}
