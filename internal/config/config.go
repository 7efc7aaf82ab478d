package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vaultScope/internal/contracts"
	"vaultScope/internal/wallet"
)

const (
	// DefaultTokenAddress is the BSC USDT (BEP-20) contract.
	DefaultTokenAddress = "0x55d398326f99059fF775485246999027B3197955"
	// DefaultPoolAddress is the Venus vUSDT market.
	DefaultPoolAddress = "0xfD5840Cd36d94D7229439859C0112a4185BC0255"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ChainID        int64
	ChainName      string
	RPCURL         string
	ExplorerURL    string
	CurrencySymbol string

	StakingAddress string
	TokenAddress   string
	PoolAddress    string

	RefreshInterval time.Duration
	VaultGasLimit   uint64
	ParallelReads   int
	MaxRetries      int
	RetryBackoff    time.Duration

	KeystoreDir string
	Account     string
	Passphrase  string
	LightScrypt bool

	StateFile    string
	PGDSN        string
	Journal      string
	ReferralBase string
	MetricsAddr  string

	LogLevel string
	LogFile  string
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("VAULTSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", int64(56))
	v.SetDefault("chain-name", "BNB Smart Chain")
	v.SetDefault("rpc", "https://bsc-dataseed.binance.org/")
	v.SetDefault("explorer", "https://bscscan.com/")
	v.SetDefault("currency-symbol", "BNB")
	v.SetDefault("token-address", DefaultTokenAddress)
	v.SetDefault("pool-address", DefaultPoolAddress)
	v.SetDefault("refresh-interval", 30*time.Second)
	v.SetDefault("vault-gas-limit", uint64(300000))
	v.SetDefault("parallel-reads", 6)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("state-file", "./data/session.json")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ChainID:         v.GetInt64("chain-id"),
		ChainName:       v.GetString("chain-name"),
		RPCURL:          v.GetString("rpc"),
		ExplorerURL:     v.GetString("explorer"),
		CurrencySymbol:  v.GetString("currency-symbol"),
		StakingAddress:  strings.TrimSpace(v.GetString("staking-address")),
		TokenAddress:    strings.TrimSpace(v.GetString("token-address")),
		PoolAddress:     strings.TrimSpace(v.GetString("pool-address")),
		RefreshInterval: v.GetDuration("refresh-interval"),
		VaultGasLimit:   v.GetUint64("vault-gas-limit"),
		ParallelReads:   v.GetInt("parallel-reads"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		KeystoreDir:     v.GetString("keystore"),
		Account:         v.GetString("account"),
		Passphrase:      v.GetString("passphrase"),
		LightScrypt:     v.GetBool("light-scrypt"),
		StateFile:       v.GetString("state-file"),
		PGDSN:           v.GetString("pg-dsn"),
		Journal:         v.GetString("journal"),
		ReferralBase:    v.GetString("referral-base"),
		MetricsAddr:     v.GetString("metrics-addr"),
		LogLevel:        v.GetString("log-level"),
		LogFile:         v.GetString("log-file"),
	}

	return cfg, nil
}

// Validate checks the fields every command depends on.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("invalid chain id: %d", c.ChainID)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("invalid refresh interval: %s", c.RefreshInterval)
	}
	_, err := c.Addresses()
	return err
}

// Addresses parses the contract addresses.
func (c Config) Addresses() (contracts.Addresses, error) {
	if c.StakingAddress == "" {
		return contracts.Addresses{}, fmt.Errorf("staking address is required")
	}
	parsed, err := ParseAddresses([]string{c.StakingAddress, c.TokenAddress, c.PoolAddress})
	if err != nil {
		return contracts.Addresses{}, err
	}
	if len(parsed) != 3 {
		return contracts.Addresses{}, fmt.Errorf("staking, token and pool addresses are required")
	}
	return contracts.Addresses{Staking: parsed[0], Token: parsed[1], LendingPool: parsed[2]}, nil
}

// Network describes the configured chain in wallet terms.
func (c Config) Network() wallet.Network {
	return wallet.Network{
		ChainID:        big.NewInt(c.ChainID),
		Name:           c.ChainName,
		RPCURL:         c.RPCURL,
		CurrencyName:   c.CurrencySymbol,
		CurrencySymbol: c.CurrencySymbol,
		Decimals:       18,
		ExplorerURL:    c.ExplorerURL,
	}
}

// ParseAddresses converts string addresses into common.Address, skipping blanks.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		addresses = append(addresses, common.HexToAddress(input))
	}
	return addresses, nil
}

func loadDotEnv() error {
	path := os.Getenv("VAULTSCOPE_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
