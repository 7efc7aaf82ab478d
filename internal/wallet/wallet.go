// Package wallet provides the active provider: account authorization, network selection and
// change notifications in the request vocabulary browser wallets use.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/chain"
	"vaultScope/internal/contracts"
	"vaultScope/internal/model"
)

// Provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

// RPCError is a provider request failure carrying a numeric code.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Is maps the rejection code onto the shared taxonomy.
func (e *RPCError) Is(target error) bool {
	return e.Code == CodeUserRejected && target == model.ErrUserRejected
}

// ErrorCode extracts the provider code from err, or 0.
func ErrorCode(err error) int {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	return 0
}

// Network is a chain definition that can be registered with the wallet.
type Network struct {
	ChainID        *big.Int
	Name           string
	RPCURL         string
	CurrencyName   string
	CurrencySymbol string
	Decimals       int
	ExplorerURL    string
}

// HexChainID returns the chain id as a 0x-prefixed hex string.
func (n Network) HexChainID() string {
	if n.ChainID == nil {
		return "0x0"
	}
	return fmt.Sprintf("0x%x", n.ChainID)
}

// EventKind identifies a provider notification.
type EventKind int

const (
	EventAccountsChanged EventKind = iota
	EventChainChanged
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventAccountsChanged:
		return "accountsChanged"
	case EventChainChanged:
		return "chainChanged"
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is a provider notification.
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  *big.Int
}

// Wallet is the active provider consumed by the session.
type Wallet interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, network Network) error
	// RequestAccounts may prompt the user.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	Backend() chain.Backend
	Transactor() contracts.Transactor
	Events() <-chan Event
}
