// Package projection computes display projections from a snapshot without touching the chain.
package projection

import (
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"vaultScope/internal/model"
)

const (
	// LockDays is the fixed lock period after a deposit.
	LockDays = 60
	// ProjectionDays is the horizon of the ROI projection.
	ProjectionDays = 60
)

var (
	// BaseDailyRate is the contract's base daily ROI (0.3%).
	BaseDailyRate = decimal.RequireFromString("0.003")

	boostScale = decimal.NewFromInt(1000)
	hundred    = decimal.NewFromInt(100)
	fifty      = decimal.NewFromInt(50)
)

// LockProgress returns the elapsed share of the lock period in [0,100].
func LockProgress(daysRemaining int64) float64 {
	progress := float64(LockDays-daysRemaining) / LockDays * 100
	return clamp(progress, 0, 100)
}

// LockWindow returns the start and end of the lock period for a deposit timestamp.
func LockWindow(depositTimestamp uint64) (time.Time, time.Time) {
	start := time.Unix(int64(depositTimestamp), 0).UTC()
	return start, start.Add(LockDays * 24 * time.Hour)
}

// Projection is the ROI estimate for an amount at a rank.
type Projection struct {
	Net       decimal.Decimal
	BoostBP   int64
	DailyRate decimal.Decimal
	Daily     decimal.Decimal
	Total     decimal.Decimal
}

// DailyRate returns baseRate * (1 + boost/1000) for a rank ordinal.
func DailyRate(rank uint8) decimal.Decimal {
	boost := decimal.NewFromInt(model.RankByIndex(rank).BoostBasisP)
	return BaseDailyRate.Mul(decimal.NewFromInt(1).Add(boost.Div(boostScale)))
}

// Project estimates daily and 60-day returns for amount at rank.
func Project(amount decimal.Decimal, rank uint8) Projection {
	rate := DailyRate(rank)
	daily := amount.Mul(rate)
	return Projection{
		Net:       amount,
		BoostBP:   model.RankByIndex(rank).BoostBasisP,
		DailyRate: rate,
		Daily:     daily,
		Total:     daily.Mul(decimal.NewFromInt(ProjectionDays)),
	}
}

// QualificationTier gates one referral level.
type QualificationTier struct {
	Deposit decimal.Decimal
	Directs uint64
}

// QualificationTiers mirrors the contract's five referral gates.
var QualificationTiers = [model.QualificationTiers]QualificationTier{
	{Deposit: decimal.NewFromInt(10), Directs: 0},
	{Deposit: decimal.NewFromInt(30), Directs: 3},
	{Deposit: decimal.NewFromInt(50), Directs: 5},
	{Deposit: decimal.NewFromInt(70), Directs: 8},
	{Deposit: decimal.NewFromInt(100), Directs: 10},
}

// QualificationScore is half deposit progress and half qualified-direct progress, each capped at 50.
// Tiers without a direct requirement award the full direct half.
func QualificationScore(tier QualificationTier, deposit decimal.Decimal, qualifiedDirects uint64) float64 {
	depositPart := ratio(deposit, tier.Deposit, fifty)
	directPart := fifty
	if tier.Directs > 0 {
		directPart = ratio(decimal.NewFromInt(int64(qualifiedDirects)), decimal.NewFromInt(int64(tier.Directs)), fifty)
	}
	score, _ := depositPart.Add(directPart).Float64()
	return score
}

// QualificationProgress scores every tier.
func QualificationProgress(deposit decimal.Decimal, qualifiedDirects uint64) [model.QualificationTiers]float64 {
	var out [model.QualificationTiers]float64
	for i, tier := range QualificationTiers {
		out[i] = QualificationScore(tier, deposit, qualifiedDirects)
	}
	return out
}

// RankRequirement is the display threshold set for one rank.
type RankRequirement struct {
	Volume  decimal.Decimal
	Directs uint64
	Deposit decimal.Decimal
}

// RankRequirements are indexed by rank-1.
var RankRequirements = [model.MaxRank]RankRequirement{
	{Volume: decimal.NewFromInt(5000), Directs: 50, Deposit: decimal.NewFromInt(50)},
	{Volume: decimal.NewFromInt(15000), Directs: 130, Deposit: decimal.NewFromInt(50)},
	{Volume: decimal.NewFromInt(30000), Directs: 300, Deposit: decimal.NewFromInt(50)},
	{Volume: decimal.NewFromInt(50000), Directs: 500, Deposit: decimal.NewFromInt(100)},
	{Volume: decimal.NewFromInt(100000), Directs: 1000, Deposit: decimal.NewFromInt(100)},
}

// RankScore averages the three clamped percentages of a requirement.
func RankScore(req RankRequirement, teamVolume, deposit decimal.Decimal, qualifiedDirects uint64) float64 {
	vol := ratio(teamVolume, req.Volume, hundred)
	dir := ratio(decimal.NewFromInt(int64(qualifiedDirects)), decimal.NewFromInt(int64(req.Directs)), hundred)
	dep := ratio(deposit, req.Deposit, hundred)
	avg, _ := vol.Add(dir).Add(dep).Div(decimal.NewFromInt(3)).Float64()
	return avg
}

// RankProgress scores every rank above "No Rank".
func RankProgress(teamVolume, deposit decimal.Decimal, qualifiedDirects uint64) [model.MaxRank]float64 {
	var out [model.MaxRank]float64
	for i, req := range RankRequirements {
		out[i] = RankScore(req, teamVolume, deposit, qualifiedDirects)
	}
	return out
}

// BoostDrift records a rank whose on-chain boost differs from the static table.
type BoostDrift struct {
	Rank    uint8
	Local   int64
	OnChain *big.Int
}

// CheckBoosts compares on-chain boosts (keyed by rank ordinal) with the static table.
func CheckBoosts(onChain map[uint8]*big.Int) []BoostDrift {
	var drifts []BoostDrift
	for rank := uint8(1); rank <= model.MaxRank; rank++ {
		value, ok := onChain[rank]
		if !ok || value == nil {
			continue
		}
		local := model.RankByIndex(rank).BoostBasisP
		if value.Cmp(big.NewInt(local)) != 0 {
			drifts = append(drifts, BoostDrift{Rank: rank, Local: local, OnChain: new(big.Int).Set(value)})
		}
	}
	return drifts
}

// ratio returns min(limit, value/threshold*limit); a non-positive threshold counts as met.
func ratio(value, threshold, limit decimal.Decimal) decimal.Decimal {
	if !threshold.IsPositive() {
		return limit
	}
	r := value.Div(threshold).Mul(limit)
	if r.GreaterThan(limit) {
		return limit
	}
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
