package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"vaultScope/internal/chain"
	"vaultScope/internal/model"
)

// Addresses locates the three contracts the dashboard talks to.
type Addresses struct {
	Staking     common.Address
	Token       common.Address
	LendingPool common.Address
}

// Transactor produces signing options for an account on the active provider.
type Transactor func(ctx context.Context, from common.Address) (*bind.TransactOpts, error)

// Config controls handle binding.
type Config struct {
	Addresses     Addresses
	VaultGasLimit uint64
}

// Handles are the contract bindings for one provider. They are rebuilt on every provider switch.
type Handles struct {
	mode       chain.Mode
	cfg        Config
	backend    chain.Backend
	transactor Transactor

	staking *bind.BoundContract
	token   *bind.BoundContract
	pool    *bind.BoundContract
}

// Bind instantiates the staking, token and lending-pool handles against backend.
// A nil transactor yields read-only handles.
func Bind(backend chain.Backend, mode chain.Mode, cfg Config, transactor Transactor) (*Handles, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	stakingABI, err := StakingABI()
	if err != nil {
		return nil, fmt.Errorf("parse staking abi: %w", err)
	}
	tokenABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	poolABI, err := LendingPoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse lending pool abi: %w", err)
	}

	return &Handles{
		mode:       mode,
		cfg:        cfg,
		backend:    backend,
		transactor: transactor,
		staking:    bind.NewBoundContract(cfg.Addresses.Staking, stakingABI, backend, backend, backend),
		token:      bind.NewBoundContract(cfg.Addresses.Token, tokenABI, backend, backend, backend),
		pool:       bind.NewBoundContract(cfg.Addresses.LendingPool, poolABI, backend, backend, backend),
	}, nil
}

// Mode reports which provider the handles are bound to.
func (h *Handles) Mode() chain.Mode {
	return h.mode
}

// Addresses returns the bound contract addresses.
func (h *Handles) Addresses() Addresses {
	return h.cfg.Addresses
}

// UserRecord reads the raw user mapping entry; Exists is false for addresses that never invested.
func (h *Handles) UserRecord(ctx context.Context, user common.Address) (UserRecord, error) {
	values, err := call(ctx, h.staking, "users", user)
	if err != nil {
		return UserRecord{}, err
	}
	return decodeUserRecord(values)
}

func (h *Handles) Summary(ctx context.Context, user common.Address) (Summary, error) {
	values, err := call(ctx, h.staking, "getUserSummary", user)
	if err != nil {
		return Summary{}, err
	}
	return decodeSummary(values)
}

func (h *Handles) Network(ctx context.Context, user common.Address) (Network, error) {
	values, err := call(ctx, h.staking, "getUserNetwork", user)
	if err != nil {
		return Network{}, err
	}
	return decodeNetwork(values)
}

func (h *Handles) Timing(ctx context.Context, user common.Address) (Timing, error) {
	values, err := call(ctx, h.staking, "getUserTime", user)
	if err != nil {
		return Timing{}, err
	}
	return decodeTiming(values)
}

func (h *Handles) Qualification(ctx context.Context, user common.Address) (Qualification, error) {
	values, err := call(ctx, h.staking, "getQualifiedStatus", user)
	if err != nil {
		return Qualification{}, err
	}
	return decodeQualification(values)
}

func (h *Handles) WithdrawFee(ctx context.Context, user common.Address) (FeeQuote, error) {
	values, err := call(ctx, h.staking, "getWithdrawFee", user)
	if err != nil {
		return FeeQuote{}, err
	}
	return decodeFeeQuote(values)
}

// RankRequirement reads the contract's requirement entry for a zero-based rank slot.
func (h *Handles) RankRequirement(ctx context.Context, slot uint64) (RankRequirement, error) {
	values, err := call(ctx, h.staking, "ranks", new(big.Int).SetUint64(slot))
	if err != nil {
		return RankRequirement{}, err
	}
	return decodeRankRequirement(values)
}

// TokenBalance reads the stablecoin balance of owner.
func (h *Handles) TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := call(ctx, h.token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return decodeSingleBigInt("balanceOf", values)
}

// Allowance reads how much of owner's stablecoin the staking contract may spend.
func (h *Handles) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := call(ctx, h.token, "allowance", owner, h.cfg.Addresses.Staking)
	if err != nil {
		return nil, err
	}
	return decodeSingleBigInt("allowance", values)
}

// PoolLiquidity reads the lending pool's idle cash. It works on passive handles.
func (h *Handles) PoolLiquidity(ctx context.Context) (*big.Int, error) {
	values, err := call(ctx, h.pool, "getCash")
	if err != nil {
		return nil, err
	}
	return decodeSingleBigInt("getCash", values)
}

// Vault moves idle protocol balance into the lending pool.
func (h *Handles) Vault(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return h.send(ctx, h.staking, from, h.cfg.VaultGasLimit, "vault")
}

// Approve allows the staking contract to spend exactly amount of from's stablecoin.
func (h *Handles) Approve(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error) {
	return h.send(ctx, h.token, from, 0, "approve", h.cfg.Addresses.Staking, amount)
}

func (h *Handles) Invest(ctx context.Context, from common.Address, amount *big.Int, referrer common.Address) (*types.Receipt, error) {
	return h.send(ctx, h.staking, from, 0, "invest", amount, referrer)
}

func (h *Handles) WithdrawROI(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return h.send(ctx, h.staking, from, 0, "withdrawROI")
}

func (h *Handles) WithdrawReferralBonuses(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return h.send(ctx, h.staking, from, 0, "withdrawReferralBonuses")
}

func (h *Handles) WithdrawCapital(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return h.send(ctx, h.staking, from, 0, "withdrawCapital")
}

func (h *Handles) send(ctx context.Context, contract *bind.BoundContract, from common.Address, gasLimit uint64, method string, params ...interface{}) (*types.Receipt, error) {
	if h.mode != chain.ModeActive || h.transactor == nil {
		return nil, fmt.Errorf("send %s: %w", method, model.ErrNotConnected)
	}
	opts, err := h.transactor(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("transact opts %s: %w", method, err)
	}
	opts.Context = ctx
	if gasLimit > 0 {
		opts.GasLimit = gasLimit
	}
	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}
	return chain.WaitMined(ctx, h.backend, tx)
}

func call(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return out, nil
}
