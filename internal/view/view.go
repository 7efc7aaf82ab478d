// Package view turns a snapshot into display-ready strings and control states.
package view

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"vaultScope/internal/model"
	"vaultScope/internal/projection"
)

const (
	zeroUSDT  = "0 USDT"
	noDate    = "-"
	dateStamp = "2006-01-02"
)

var (
	minActiveDeposit = decimal.RequireFromString("0.01")
	minControlAmount = decimal.NewFromInt(1)
)

// RankBadge is the rank display metadata.
type RankBadge struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Class string `json:"class"`
}

// Lock describes the lock-period bar.
type Lock struct {
	Text         string  `json:"text"`
	Progress     float64 `json:"progress"`
	ProgressText string  `json:"progress_text"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
}

// Controls reports which write controls are enabled.
type Controls struct {
	ClaimROI      bool `json:"claim_roi"`
	ClaimReferral bool `json:"claim_referral"`
	Withdraw      bool `json:"withdraw"`
}

// Tier is one qualification gate.
type Tier struct {
	Level     int     `json:"level"`
	Qualified bool    `json:"qualified"`
	Progress  float64 `json:"progress"`
}

// RankStep is progress toward one rank.
type RankStep struct {
	Rank     string  `json:"rank"`
	Current  bool    `json:"current"`
	Progress float64 `json:"progress"`
}

// Dashboard is everything the presenter renders for one snapshot.
type Dashboard struct {
	Address          string     `json:"address"`
	Exists           bool       `json:"exists"`
	Rank             RankBadge  `json:"rank"`
	Boost            string     `json:"boost"`
	ActiveDeposit    string     `json:"active_deposit"`
	TotalDeposited   string     `json:"total_deposited"`
	PendingROI       string     `json:"pending_roi"`
	PendingReferral  string     `json:"pending_referral"`
	Available        string     `json:"available"`
	WalletBalance    string     `json:"wallet_balance"`
	Lock             Lock       `json:"lock"`
	Directs          uint64     `json:"directs"`
	QualifiedDirects uint64     `json:"qualified_directs"`
	TeamVolume       string     `json:"team_volume"`
	ReferralEarnings string     `json:"referral_earnings"`
	WithdrawFee      string     `json:"withdraw_fee"`
	Qualification    []Tier     `json:"qualification"`
	RankProgress     []RankStep `json:"rank_progress"`
	Controls         Controls   `json:"controls"`
}

// BuildDashboard renders a snapshot. A snapshot with Exists=false renders the zeroed defaults.
func BuildDashboard(s model.Snapshot) Dashboard {
	if !s.Exists {
		return emptyDashboard(s)
	}

	active := model.FromRaw(s.ActiveDeposit)
	roi := model.FromRaw(s.PendingROI)
	bonus := model.FromRaw(s.PendingReferralBonus)
	tier := s.RankTier()

	d := Dashboard{
		Address:          ShortAddress(s.Address),
		Exists:           true,
		Rank:             RankBadge{Name: tier.Name, Icon: tier.Icon, Class: tier.Class},
		Boost:            Boost(tier.BoostBasisP),
		ActiveDeposit:    Amount(active, 2),
		TotalDeposited:   USDT(s.TotalDeposited),
		PendingROI:       Amount(roi, 2),
		PendingReferral:  Amount(bonus, 2),
		Available:        Amount(roi.Add(bonus), 2),
		WalletBalance:    USDT(s.TokenBalance),
		Lock:             buildLock(active, s.DaysLockRemaining, s.DepositTimestamp),
		Directs:          s.DirectCount,
		QualifiedDirects: s.QualifiedDirectCount,
		TeamVolume:       USDT(s.TeamVolume),
		ReferralEarnings: USDT(s.ReferralEarningsTotal),
		WithdrawFee:      fmt.Sprintf("%s (%d%%)", USDT(s.WithdrawFeeAmount), s.WithdrawFeePercent),
		Controls: Controls{
			ClaimROI:      roi.GreaterThanOrEqual(minControlAmount),
			ClaimReferral: bonus.GreaterThanOrEqual(minControlAmount),
			Withdraw:      active.GreaterThanOrEqual(minControlAmount),
		},
	}

	qual := projection.QualificationProgress(active, s.QualifiedDirectCount)
	for i, p := range qual {
		d.Qualification = append(d.Qualification, Tier{Level: i + 1, Qualified: s.QualifiedTierFlags[i], Progress: p})
	}
	ranks := projection.RankProgress(model.FromRaw(s.TeamVolume), active, s.QualifiedDirectCount)
	for i, p := range ranks {
		rank := uint8(i + 1)
		d.RankProgress = append(d.RankProgress, RankStep{Rank: model.RankByIndex(rank).Name, Current: s.Rank == rank, Progress: p})
	}
	return d
}

func emptyDashboard(s model.Snapshot) Dashboard {
	d := Dashboard{
		Address:          ShortAddress(s.Address),
		Rank:             RankBadge{Name: model.RankTiers[0].Name, Icon: "fas fa-user"},
		Boost:            "0%",
		ActiveDeposit:    zeroUSDT,
		TotalDeposited:   zeroUSDT,
		PendingROI:       zeroUSDT,
		PendingReferral:  zeroUSDT,
		Available:        zeroUSDT,
		WalletBalance:    USDT(s.TokenBalance),
		Lock:             Lock{Text: "No active deposit", ProgressText: "0%", Start: noDate, End: noDate},
		TeamVolume:       zeroUSDT,
		ReferralEarnings: zeroUSDT,
		WithdrawFee:      zeroUSDT,
	}
	for i := 0; i < model.QualificationTiers; i++ {
		d.Qualification = append(d.Qualification, Tier{Level: i + 1})
	}
	for rank := uint8(1); rank <= model.MaxRank; rank++ {
		d.RankProgress = append(d.RankProgress, RankStep{Rank: model.RankByIndex(rank).Name})
	}
	return d
}

func buildLock(active decimal.Decimal, daysLeft int64, depositTimestamp uint64) Lock {
	if !active.GreaterThan(minActiveDeposit) {
		return Lock{Text: "No active deposit", ProgressText: "0%", Start: noDate, End: noDate}
	}
	progress := projection.LockProgress(daysLeft)
	start, end := projection.LockWindow(depositTimestamp)
	text := "Unlocked"
	if daysLeft > 0 {
		text = fmt.Sprintf("%d days remaining", daysLeft)
	}
	return Lock{
		Text:         text,
		Progress:     progress,
		ProgressText: strconv.Itoa(int(math.Round(progress))) + "%",
		Start:        start.Format(dateStamp),
		End:          end.Format(dateStamp),
	}
}

// Boost renders basis points as "+N%" where N is bp/10.
func Boost(bp int64) string {
	return "+" + decimal.NewFromInt(bp).Div(decimal.NewFromInt(10)).String() + "%"
}

// Calculator is the invest-page projection.
type Calculator struct {
	Net   string `json:"net"`
	Daily string `json:"daily"`
	Total string `json:"total_60d"`
	Boost string `json:"boost"`
}

// BuildCalculator projects amount at rank: daily to four places, 60-day to two.
func BuildCalculator(amount decimal.Decimal, rank uint8) Calculator {
	p := projection.Project(amount, rank)
	return Calculator{
		Net:   Amount(p.Net, 2),
		Daily: Amount(p.Daily, 4),
		Total: Amount(p.Total, 2),
		Boost: Boost(p.BoostBP),
	}
}

// WithdrawConfirmation is the figures shown before a capital withdrawal.
type WithdrawConfirmation struct {
	Amount      string `json:"amount"`
	Fee         string `json:"fee"`
	Receive     string `json:"receive"`
	Warning     string `json:"warning"`
	Explanation string `json:"explanation"`
	Early       bool   `json:"early"`
}

// ErrNoActiveDeposit is returned when there is nothing to withdraw.
var ErrNoActiveDeposit = errors.New("no active deposit to withdraw")

// BuildWithdrawConfirmation computes the withdraw dialog figures.
func BuildWithdrawConfirmation(s model.Snapshot) (WithdrawConfirmation, error) {
	active := model.FromRaw(s.ActiveDeposit)
	if !s.Exists || active.LessThan(minActiveDeposit) {
		return WithdrawConfirmation{}, ErrNoActiveDeposit
	}
	fee := model.FromRaw(s.WithdrawFeeAmount)
	c := WithdrawConfirmation{
		Amount:  Amount(active, 2),
		Fee:     fmt.Sprintf("%s (%d%%)", Amount(fee, 2), s.WithdrawFeePercent),
		Receive: Amount(active.Sub(fee), 2),
	}
	if s.WithdrawFeePercent == 0 {
		c.Warning = "No withdrawal fee!"
		c.Explanation = "Lock period complete. You can withdraw without fees."
	} else {
		c.Early = true
		c.Warning = "Early withdrawal 50% fee!"
		c.Explanation = "50% early withdrawal fee applies."
	}
	return c, nil
}

// ReferralLink appends ?ref=<address> to base.
func ReferralLink(base string, addr common.Address) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse referral base: %w", err)
	}
	q := u.Query()
	q.Set("ref", addr.Hex())
	u.RawQuery = q.Encode()
	return u.String(), nil
}
