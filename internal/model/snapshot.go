package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// QualificationTiers is the number of tier gates reported by the contract.
const QualificationTiers = 5

// Snapshot is one user's aggregated on-chain position, rebuilt wholesale on every refresh.
type Snapshot struct {
	Address common.Address
	Exists  bool

	ActiveDeposit        *big.Int
	PendingROI           *big.Int
	PendingReferralBonus *big.Int
	Rank                 uint8

	DirectCount          uint64
	QualifiedDirectCount uint64
	TeamVolume           *big.Int

	DepositTimestamp   uint64
	LastClaimTimestamp uint64
	DaysLockRemaining  int64

	WithdrawFeePercent uint64
	WithdrawFeeAmount  *big.Int

	TotalDeposited        *big.Int
	ReferralEarningsTotal *big.Int

	QualifiedTierFlags [QualificationTiers]bool

	// TokenBalance is the wallet's stablecoin balance, read even when Exists is false.
	TokenBalance *big.Int

	Sequence  uint64
	FetchedAt time.Time
}

// EmptySnapshot returns the zeroed "never invested" snapshot for an address.
func EmptySnapshot(address common.Address) Snapshot {
	return Snapshot{
		Address:               address,
		ActiveDeposit:         new(big.Int),
		PendingROI:            new(big.Int),
		PendingReferralBonus:  new(big.Int),
		TeamVolume:            new(big.Int),
		WithdrawFeeAmount:     new(big.Int),
		TotalDeposited:        new(big.Int),
		ReferralEarningsTotal: new(big.Int),
		TokenBalance:          new(big.Int),
	}
}

// Found reports whether the address has ever invested.
func (s Snapshot) Found() bool {
	return s.Exists
}

// RankTier returns the static tier metadata for the snapshot's rank.
func (s Snapshot) RankTier() RankTier {
	return RankByIndex(s.Rank)
}
