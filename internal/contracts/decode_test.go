package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/chain"
	"vaultScope/internal/model"
)

func TestDecodeUserRecord(t *testing.T) {
	stakingABI, err := StakingABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	referrer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := stakingABI.Methods["users"].Outputs.Pack(
		referrer,
		uint8(2),
		model.Units(150),
		model.Units(200),
		big.NewInt(1700000000),
		big.NewInt(1700086400),
		model.Units(12),
		model.Units(3),
		big.NewInt(4),
		big.NewInt(2),
		model.Units(5000),
		model.Units(50),
		big.NewInt(1699990000),
		true,
	)
	if err != nil {
		t.Fatalf("pack users: %v", err)
	}

	values, err := stakingABI.Unpack("users", data)
	if err != nil {
		t.Fatalf("unpack users: %v", err)
	}
	rec, err := decodeUserRecord(values)
	if err != nil {
		t.Fatalf("decode users: %v", err)
	}

	if !rec.Exists {
		t.Fatalf("exists flag lost")
	}
	if rec.Referrer != referrer || rec.Rank != 2 {
		t.Fatalf("header mismatch: %+v", rec)
	}
	if rec.ActiveDeposit.Cmp(model.Units(150)) != 0 || rec.TotalDeposited.Cmp(model.Units(200)) != 0 {
		t.Fatalf("deposit mismatch: %s %s", rec.ActiveDeposit, rec.TotalDeposited)
	}
	if rec.ReferralEarnings.Cmp(model.Units(12)) != 0 {
		t.Fatalf("referral earnings mismatch: %s", rec.ReferralEarnings)
	}
	if rec.DirectCount != 4 || rec.QualifiedDirects != 2 || rec.JoinedAt != 1699990000 {
		t.Fatalf("counters mismatch: %+v", rec)
	}
}

func TestDecodeSummaryAndTiming(t *testing.T) {
	stakingABI, err := StakingABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := stakingABI.Methods["getUserSummary"].Outputs.Pack(model.Units(100), model.Units(2), big.NewInt(0), uint8(3))
	if err != nil {
		t.Fatalf("pack summary: %v", err)
	}
	values, err := stakingABI.Unpack("getUserSummary", data)
	if err != nil {
		t.Fatalf("unpack summary: %v", err)
	}
	summary, err := decodeSummary(values)
	if err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Rank != 3 || summary.PendingROI.Cmp(model.Units(2)) != 0 || summary.PendingBonuses.Sign() != 0 {
		t.Fatalf("summary mismatch: %+v", summary)
	}

	data, err = stakingABI.Methods["getUserTime"].Outputs.Pack(big.NewInt(1700000000), big.NewInt(1700003600), big.NewInt(42))
	if err != nil {
		t.Fatalf("pack time: %v", err)
	}
	values, err = stakingABI.Unpack("getUserTime", data)
	if err != nil {
		t.Fatalf("unpack time: %v", err)
	}
	timing, err := decodeTiming(values)
	if err != nil {
		t.Fatalf("decode time: %v", err)
	}
	if timing.DaysLeft != 42 || timing.DepositTime != 1700000000 {
		t.Fatalf("timing mismatch: %+v", timing)
	}
}

func TestDecodeQualificationAndFee(t *testing.T) {
	stakingABI, err := StakingABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := stakingABI.Methods["getQualifiedStatus"].Outputs.Pack([5]bool{true, true, false, false, false})
	if err != nil {
		t.Fatalf("pack qualification: %v", err)
	}
	values, err := stakingABI.Unpack("getQualifiedStatus", data)
	if err != nil {
		t.Fatalf("unpack qualification: %v", err)
	}
	flags, err := decodeQualification(values)
	if err != nil {
		t.Fatalf("decode qualification: %v", err)
	}
	if flags != (Qualification{true, true, false, false, false}) {
		t.Fatalf("flags mismatch: %v", flags)
	}

	data, err = stakingABI.Methods["getWithdrawFee"].Outputs.Pack(big.NewInt(50), model.Units(25))
	if err != nil {
		t.Fatalf("pack fee: %v", err)
	}
	values, err = stakingABI.Unpack("getWithdrawFee", data)
	if err != nil {
		t.Fatalf("unpack fee: %v", err)
	}
	fee, err := decodeFeeQuote(values)
	if err != nil {
		t.Fatalf("decode fee: %v", err)
	}
	if fee.Percent != 50 || fee.Amount.Cmp(model.Units(25)) != 0 {
		t.Fatalf("fee mismatch: %+v", fee)
	}
}

func TestDecodeRejectsShortReturn(t *testing.T) {
	if _, err := decodeSummary([]interface{}{big.NewInt(1)}); err == nil {
		t.Fatalf("expected error for short summary")
	}
	if _, err := decodeUserRecord(nil); err == nil {
		t.Fatalf("expected error for empty users return")
	}
}

func TestPassiveHandlesRefuseWrites(t *testing.T) {
	h := &Handles{mode: chain.ModePassive}
	_, err := h.WithdrawROI(context.Background(), common.HexToAddress("0x2222222222222222222222222222222222222222"))
	if !errors.Is(err, model.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestBindRequiresBackend(t *testing.T) {
	if _, err := Bind(nil, chain.ModePassive, Config{}, nil); err == nil {
		t.Fatalf("expected error for nil backend")
	}
}
