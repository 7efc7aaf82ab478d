package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const stakingABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "", "type": "address"}],
    "name": "users",
    "outputs": [
      {"internalType": "address", "name": "referrer", "type": "address"},
      {"internalType": "uint8", "name": "rank", "type": "uint8"},
      {"internalType": "uint256", "name": "activeDeposit", "type": "uint256"},
      {"internalType": "uint256", "name": "totalDeposited", "type": "uint256"},
      {"internalType": "uint256", "name": "depositTime", "type": "uint256"},
      {"internalType": "uint256", "name": "lastClaimTime", "type": "uint256"},
      {"internalType": "uint256", "name": "referralEarnings", "type": "uint256"},
      {"internalType": "uint256", "name": "pendingBonus", "type": "uint256"},
      {"internalType": "uint256", "name": "directCount", "type": "uint256"},
      {"internalType": "uint256", "name": "qualifiedDirects", "type": "uint256"},
      {"internalType": "uint256", "name": "teamVolume", "type": "uint256"},
      {"internalType": "uint256", "name": "totalWithdrawn", "type": "uint256"},
      {"internalType": "uint256", "name": "joinedAt", "type": "uint256"},
      {"internalType": "bool", "name": "exists", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getUserSummary",
    "outputs": [
      {"internalType": "uint256", "name": "activeDeposit", "type": "uint256"},
      {"internalType": "uint256", "name": "pendingROI", "type": "uint256"},
      {"internalType": "uint256", "name": "pendingBonuses", "type": "uint256"},
      {"internalType": "uint8", "name": "rank", "type": "uint8"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getUserNetwork",
    "outputs": [
      {"internalType": "uint256", "name": "directs", "type": "uint256"},
      {"internalType": "uint256", "name": "qualified", "type": "uint256"},
      {"internalType": "uint256", "name": "teamVolume", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getUserTime",
    "outputs": [
      {"internalType": "uint256", "name": "depositTime", "type": "uint256"},
      {"internalType": "uint256", "name": "lastClaim", "type": "uint256"},
      {"internalType": "uint256", "name": "daysLeft", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getQualifiedStatus",
    "outputs": [{"internalType": "bool[5]", "name": "", "type": "bool[5]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getWithdrawFee",
    "outputs": [
      {"internalType": "uint256", "name": "percent", "type": "uint256"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "name": "ranks",
    "outputs": [
      {"internalType": "uint256", "name": "teamVolume", "type": "uint256"},
      {"internalType": "uint256", "name": "directs", "type": "uint256"},
      {"internalType": "uint256", "name": "personalDeposit", "type": "uint256"},
      {"internalType": "uint256", "name": "roiBoost", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [], "name": "vault", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {
    "inputs": [
      {"internalType": "uint256", "name": "amount", "type": "uint256"},
      {"internalType": "address", "name": "referrer", "type": "address"}
    ],
    "name": "invest",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {"inputs": [], "name": "withdrawROI", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "withdrawReferralBonuses", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "withdrawCapital", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

const erc20ABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "owner", "type": "address"}, {"internalType": "address", "name": "spender", "type": "address"}], "name": "allowance", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "spender", "type": "address"}, {"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "approve", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

const lendingPoolABIJSON = `[
  {"inputs": [], "name": "getCash", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	stakingABI     abi.ABI
	stakingABIOnce sync.Once
	stakingABIErr  error

	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error

	lendingPoolABI     abi.ABI
	lendingPoolABIOnce sync.Once
	lendingPoolABIErr  error
)

// StakingABI returns the parsed staking contract ABI.
func StakingABI() (abi.ABI, error) {
	stakingABIOnce.Do(func() {
		stakingABI, stakingABIErr = abi.JSON(strings.NewReader(stakingABIJSON))
	})
	return stakingABI, stakingABIErr
}

// ERC20ABI returns the parsed subset of the ERC-20 ABI used for deposits.
func ERC20ABI() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// LendingPoolABI returns the parsed lending-pool market ABI.
func LendingPoolABI() (abi.ABI, error) {
	lendingPoolABIOnce.Do(func() {
		lendingPoolABI, lendingPoolABIErr = abi.JSON(strings.NewReader(lendingPoolABIJSON))
	})
	return lendingPoolABI, lendingPoolABIErr
}
