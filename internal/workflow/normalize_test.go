package workflow

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"vaultScope/internal/model"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		kind Kind
		err  error
		want string
	}{
		{KindInvest, errors.New("MetaMask Tx Signature: user rejected transaction"), "Failed: Transaction cancelled by user"},
		{KindInvest, fmt.Errorf("request: %w", model.ErrUserRejected), "Failed: Transaction cancelled by user"},
		{KindInvest, errors.New("insufficient funds for gas * price + value"), "Failed: Insufficient BNB for gas"},
		{KindInvest, errors.New("execution reverted: Amount below minimum"), "Failed: Amount below minimum investment (10 USDT)"},
		{KindClaimROI, errors.New("user rejected"), "Failed: Transaction cancelled"},
		{KindClaimReferral, errors.New("execution reverted: Bonus below minimum withdraw"), "Failed: Bonus below minimum withdraw (1 USDT)"},
		{KindWithdraw, errors.New("execution reverted: Insufficient balance"), "Failed: Insufficient balance to withdraw"},
		{KindWithdraw, errors.New("nonce too low"), "Failed: nonce too low"},
		{KindWithdraw, model.ErrSessionChanged, "Failed: Account changed during the transaction, please retry"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.kind, tc.err); got != tc.want {
			t.Fatalf("%s %q: got %q want %q", tc.kind, tc.err, got, tc.want)
		}
	}
	if Normalize(KindInvest, nil) != "" {
		t.Fatalf("nil error should normalize to empty")
	}
}

func TestParseReferrer(t *testing.T) {
	valid := "0xAbCdEf0123456789abcdef0123456789ABCDEF01"
	addr, err := ParseReferrer(valid)
	if err != nil {
		t.Fatalf("valid referrer rejected: %v", err)
	}
	if addr != common.HexToAddress(valid) {
		t.Fatalf("unexpected address %s", addr.Hex())
	}

	for _, empty := range []string{"", "  ", PlaceholderReferrer, "0x0000000000000000000000000000000000000000"} {
		addr, err := ParseReferrer(empty)
		if err != nil || addr != (common.Address{}) {
			t.Fatalf("placeholder %q: %v %s", empty, err, addr.Hex())
		}
	}

	for _, bad := range []string{"0x123", "1234567890abcdef1234567890abcdef12345678", "0xZZ34567890abcdef1234567890abcdef12345678", valid + "0"} {
		if _, err := ParseReferrer(bad); !errors.Is(err, model.ErrInvalidReferrer) {
			t.Fatalf("%q should be rejected, got %v", bad, err)
		}
	}
}

func TestReferrerFromLink(t *testing.T) {
	ref, ok := ReferrerFromLink("https://example.org/?ref=0x1234567890abcdef1234567890abcdef12345678")
	if !ok || ref != "0x1234567890abcdef1234567890abcdef12345678" {
		t.Fatalf("link referrer not extracted: %q %v", ref, ok)
	}
	if _, ok := ReferrerFromLink("https://example.org/?ref=bogus"); ok {
		t.Fatalf("invalid ref accepted")
	}
	if _, ok := ReferrerFromLink("https://example.org/"); ok {
		t.Fatalf("missing ref accepted")
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func mustRaw(t *testing.T, s string) *big.Int {
	t.Helper()
	raw, err := model.ToRaw(mustDecimal(t, s))
	if err != nil {
		t.Fatalf("raw %q: %v", s, err)
	}
	return raw
}
