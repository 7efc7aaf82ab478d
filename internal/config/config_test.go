package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
)

const staking = "0x1111111111111111111111111111111111111111"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VAULTSCOPE_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	cfgFile := writeFile(t, "config.yaml", "staking-address: "+staking+"\n")

	cfg, err := Load(cfgFile, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != 56 || cfg.RefreshInterval != 30*time.Second || cfg.VaultGasLimit != 300000 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Network().HexChainID() != "0x38" {
		t.Fatalf("network chain id: %s", cfg.Network().HexChainID())
	}
	addrs, err := cfg.Addresses()
	if err != nil {
		t.Fatalf("addresses: %v", err)
	}
	if addrs.Staking != common.HexToAddress(staking) || addrs.Token != common.HexToAddress(DefaultTokenAddress) {
		t.Fatalf("address mismatch: %+v", addrs)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("VAULTSCOPE_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("VAULTSCOPE_LOG_LEVEL", "warn")
	t.Setenv("VAULTSCOPE_REFRESH_INTERVAL", "10s")
	cfgFile := writeFile(t, "config.yaml", "log-level: error\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("rpc", "", "")
	if err := flags.Parse([]string{"--rpc", "http://localhost:8545"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(cfgFile, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "http://localhost:8545" {
		t.Fatalf("flag not applied: %s", cfg.RPCURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env should beat config file, got %s", cfg.LogLevel)
	}
	if cfg.RefreshInterval != 10*time.Second {
		t.Fatalf("refresh interval: %s", cfg.RefreshInterval)
	}
}

func TestDotEnvIsLoaded(t *testing.T) {
	envFile := writeFile(t, "test.env", "VAULTSCOPE_STAKING_ADDRESS="+staking+"\n")
	t.Setenv("VAULTSCOPE_ENV_FILE", envFile)
	t.Cleanup(func() { os.Unsetenv("VAULTSCOPE_STAKING_ADDRESS") })
	cfgFile := writeFile(t, "config.yaml", "chain-id: 97\n")

	cfg, err := Load(cfgFile, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StakingAddress != staking || cfg.ChainID != 97 {
		t.Fatalf("dotenv/config not merged: %+v", cfg)
	}
}

func TestValidateRejectsBadAddresses(t *testing.T) {
	cfg := Config{RPCURL: "http://x", ChainID: 56, RefreshInterval: time.Second, TokenAddress: DefaultTokenAddress, PoolAddress: DefaultPoolAddress}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing staking address error")
	}
	cfg.StakingAddress = "0x123"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid address error")
	}
	cfg.StakingAddress = staking
	cfg.PoolAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing pool address error")
	}
}

func TestParseAddressesSkipsBlanks(t *testing.T) {
	got, err := ParseAddresses([]string{" ", staking, ""})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0] != common.HexToAddress(staking) {
		t.Fatalf("unexpected result: %v", got)
	}
}
