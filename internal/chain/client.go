package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"vaultScope/internal/model"
)

// Mode distinguishes the read-only endpoint from the wallet-backed connection.
type Mode int

const (
	// ModePassive is a plain HTTP endpoint used before any wallet connects.
	ModePassive Mode = iota
	// ModeActive is the wallet's connection, required for state-changing calls.
	ModeActive
)

func (m Mode) String() string {
	switch m {
	case ModePassive:
		return "passive"
	case ModeActive:
		return "active"
	default:
		return "unknown"
	}
}

// Backend is what contract handles need from a connection.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Client wraps go-ethereum RPC and provides helper methods.
// There is no caching: every call is a fresh round trip.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	mode      Mode
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, mode Mode) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		mode:      mode,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Mode returns the provider mode this client was dialed for.
func (c *Client) Mode() Mode {
	return c.mode
}

// Backend exposes the connection for binding contracts.
func (c *Client) Backend() Backend {
	return c.ethClient
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// WaitMined blocks until tx is mined on backend and fails if its status flag is false.
// There is no timeout beyond ctx.
func WaitMined(ctx context.Context, backend bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", model.ErrTransactionReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
