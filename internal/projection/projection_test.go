package projection

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProjectGoldRank(t *testing.T) {
	p := Project(decimal.NewFromInt(100), 3)

	if p.BoostBP != 30 {
		t.Fatalf("boost mismatch: %d", p.BoostBP)
	}
	if !p.DailyRate.Equal(decimal.RequireFromString("0.00309")) {
		t.Fatalf("daily rate mismatch: %s", p.DailyRate)
	}
	if !p.Daily.Equal(decimal.RequireFromString("0.309")) {
		t.Fatalf("daily mismatch: %s", p.Daily)
	}
	if !p.Total.Equal(decimal.RequireFromString("18.54")) {
		t.Fatalf("60-day mismatch: %s", p.Total)
	}
}

func TestProjectIsDeterministicForEveryRank(t *testing.T) {
	amount := decimal.RequireFromString("250.5")
	for rank := uint8(0); rank <= 5; rank++ {
		a := Project(amount, rank)
		b := Project(amount, rank)
		if !a.Total.Equal(b.Total) || !a.Daily.Equal(b.Daily) {
			t.Fatalf("rank %d not deterministic", rank)
		}
		want := BaseDailyRate.Mul(decimal.NewFromInt(1000 + a.BoostBP)).Div(decimal.NewFromInt(1000))
		if !a.DailyRate.Equal(want) {
			t.Fatalf("rank %d rate mismatch: %s != %s", rank, a.DailyRate, want)
		}
	}
	if !Project(amount, 0).DailyRate.Equal(BaseDailyRate) {
		t.Fatalf("no rank should use the base rate")
	}
}

func TestLockProgressBounds(t *testing.T) {
	if got := LockProgress(60); got != 0 {
		t.Fatalf("progress at 60 days: %v", got)
	}
	if got := LockProgress(0); got != 100 {
		t.Fatalf("progress at 0 days: %v", got)
	}
	if got := LockProgress(-5); got != 100 {
		t.Fatalf("progress below zero should clamp: %v", got)
	}
	if got := LockProgress(90); got != 0 {
		t.Fatalf("progress above lock should clamp: %v", got)
	}
}

func TestLockProgressMonotonic(t *testing.T) {
	prev := LockProgress(60)
	for days := int64(59); days >= -1; days-- {
		cur := LockProgress(days)
		if cur < prev {
			t.Fatalf("progress decreased at %d days: %v < %v", days, cur, prev)
		}
		prev = cur
	}
}

func TestLockWindow(t *testing.T) {
	start, end := LockWindow(1700000000)
	if end.Sub(start) != 60*24*time.Hour {
		t.Fatalf("lock window length: %v", end.Sub(start))
	}
	if start.Unix() != 1700000000 {
		t.Fatalf("start mismatch: %v", start)
	}
}

func TestQualificationScore(t *testing.T) {
	tier := QualificationTier{Deposit: decimal.NewFromInt(30), Directs: 3}
	if got := QualificationScore(tier, decimal.NewFromInt(15), 3); got != 75 {
		t.Fatalf("score mismatch: %v", got)
	}
	if got := QualificationScore(tier, decimal.NewFromInt(1000), 99); got != 100 {
		t.Fatalf("score should cap at 100: %v", got)
	}
	first := QualificationProgress(decimal.NewFromInt(5), 0)[0]
	if first != 75 {
		t.Fatalf("tier without direct requirement: %v", first)
	}
}

func TestRankScore(t *testing.T) {
	req := RankRequirements[0]
	got := RankScore(req, decimal.NewFromInt(2500), decimal.NewFromInt(50), 25)
	// (50 + 50 + 100) / 3
	want := 200.0 / 3
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("rank score mismatch: %v != %v", got, want)
	}
	all := RankProgress(decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000), 5000)
	for i, score := range all {
		if score != 100 {
			t.Fatalf("rank %d should be complete: %v", i+1, score)
		}
	}
}

func TestCheckBoosts(t *testing.T) {
	drifts := CheckBoosts(map[uint8]*big.Int{
		1: big.NewInt(10),
		3: big.NewInt(35),
	})
	if len(drifts) != 1 || drifts[0].Rank != 3 || drifts[0].Local != 30 {
		t.Fatalf("unexpected drifts: %+v", drifts)
	}
}
