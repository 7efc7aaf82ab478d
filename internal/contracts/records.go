package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/model"
)

// UserRecord is the decoded users(address) mapping entry.
type UserRecord struct {
	Referrer         common.Address
	Rank             uint8
	ActiveDeposit    *big.Int
	TotalDeposited   *big.Int
	DepositTime      uint64
	LastClaimTime    uint64
	ReferralEarnings *big.Int
	PendingBonus     *big.Int
	DirectCount      uint64
	QualifiedDirects uint64
	TeamVolume       *big.Int
	TotalWithdrawn   *big.Int
	JoinedAt         uint64
	Exists           bool
}

// Summary is the decoded getUserSummary result.
type Summary struct {
	ActiveDeposit  *big.Int
	PendingROI     *big.Int
	PendingBonuses *big.Int
	Rank           uint8
}

// Network is the decoded getUserNetwork result.
type Network struct {
	Directs    uint64
	Qualified  uint64
	TeamVolume *big.Int
}

// Timing is the decoded getUserTime result.
type Timing struct {
	DepositTime uint64
	LastClaim   uint64
	DaysLeft    int64
}

// FeeQuote is the decoded getWithdrawFee result.
type FeeQuote struct {
	Percent uint64
	Amount  *big.Int
}

// Qualification holds the per-tier gate flags.
type Qualification [model.QualificationTiers]bool

// RankRequirement is the decoded ranks(i) entry.
type RankRequirement struct {
	TeamVolume      *big.Int
	Directs         *big.Int
	PersonalDeposit *big.Int
	ROIBoost        *big.Int
}
