package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vaultScope/internal/model"
	"vaultScope/internal/view"
	"vaultScope/internal/workflow"
)

const referrerHex = "0x1111111111111111111111111111111111111111"

func TestProjectCommand(t *testing.T) {
	cmd := newProjectCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--amount", "100", "--rank", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Gold (+3%)", "0.3090 USDT", "18.54 USDT"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestProjectCommandRejectsBadRank(t *testing.T) {
	cmd := newProjectCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--rank", "9"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected rank error")
	}
}

func TestAskConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false}
	for input, want := range cases {
		if got := askConfirm(strings.NewReader(input), &bytes.Buffer{}); got != want {
			t.Fatalf("askConfirm(%q) = %v", input, got)
		}
	}
}

func TestOutcomeErr(t *testing.T) {
	if err := outcomeErr(workflow.Outcome{OK: true}); err != nil {
		t.Fatalf("ok outcome returned %v", err)
	}
	if err := outcomeErr(workflow.Outcome{Err: model.ErrBusy}); !errors.Is(err, model.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := outcomeErr(workflow.Outcome{Message: "Failed: nope"}); err == nil || err.Error() != "Failed: nope" {
		t.Fatalf("expected message error, got %v", err)
	}
}

func TestConsolePresenter(t *testing.T) {
	var out bytes.Buffer
	p := newConsolePresenter(&out)
	p.BeginAction(workflow.KindClaimROI)
	if !p.active[workflow.KindClaimROI] || !strings.Contains(out.String(), "Claim ROI: Processing...") {
		t.Fatalf("begin not presented: %q", out.String())
	}
	p.EndAction(workflow.KindClaimROI)
	if len(p.active) != 0 {
		t.Fatalf("control not restored")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("loud", ""); err == nil {
		t.Fatalf("expected invalid level error")
	}
	logger, err := newLogger("debug", filepath.Join(t.TempDir(), "vaultscope.log"))
	if err != nil {
		t.Fatalf("file logger: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()
}

func TestInvestInputFromReferralLink(t *testing.T) {
	cmd := newInvestCmd()
	if err := cmd.ParseFlags([]string{"--amount", "25", "--ref-link", "https://vault.example/?ref=" + referrerHex}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	amount, referrer := investInput(cmd)
	if amount != "25" || referrer != referrerHex {
		t.Fatalf("unexpected input: %q %q", amount, referrer)
	}
}

func TestInvestInputIgnoresBadLinkAndPrefersReferrer(t *testing.T) {
	cmd := newInvestCmd()
	if err := cmd.ParseFlags([]string{"--ref-link", "https://vault.example/?ref=0x123"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if amount, referrer := investInput(cmd); amount != "10" || referrer != "" {
		t.Fatalf("bad link should mean no referrer: %q %q", amount, referrer)
	}

	cmd = newInvestCmd()
	other := "0x2222222222222222222222222222222222222222"
	if err := cmd.ParseFlags([]string{"--referrer", other, "--ref-link", "https://vault.example/?ref=" + referrerHex}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, referrer := investInput(cmd); referrer != other {
		t.Fatalf("explicit referrer lost: %q", referrer)
	}
}

func TestPresentOutcomeShowsDashboardAfterInvest(t *testing.T) {
	var out bytes.Buffer
	dashboard := func() (view.Dashboard, bool) {
		return view.Dashboard{Address: "0x12...5678", Rank: view.RankBadge{Name: "Gold"}, Boost: "+3%"}, true
	}
	outcome := workflow.Outcome{Kind: workflow.KindInvest, OK: true, ResetAmount: "10", Navigate: workflow.NavigateDashboard}
	if err := presentOutcome(&out, outcome, dashboard); err != nil {
		t.Fatalf("present: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Amount reset to 10 USDT", "Account:           0x12...5678", "Gold (+3%)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPresentOutcomeWithdrawAndFailure(t *testing.T) {
	var out bytes.Buffer
	shown := 0
	dashboard := func() (view.Dashboard, bool) {
		shown++
		return view.Dashboard{}, true
	}
	if err := presentOutcome(&out, workflow.Outcome{Kind: workflow.KindWithdraw, OK: true, CloseDialog: true}, dashboard); err != nil {
		t.Fatalf("present: %v", err)
	}
	if shown != 1 {
		t.Fatalf("dashboard not shown after withdraw")
	}

	out.Reset()
	err := presentOutcome(&out, workflow.Outcome{Kind: workflow.KindClaimROI, Err: model.ErrBelowMinimum, Message: "Minimum 1 USDT to claim ROI"}, dashboard)
	if !errors.Is(err, model.ErrBelowMinimum) || out.Len() != 0 || shown != 1 {
		t.Fatalf("failure rendered or lost: %v %q", err, out.String())
	}

	if err := presentOutcome(&out, workflow.Outcome{Kind: workflow.KindClaimROI, OK: true}, dashboard); err != nil || out.Len() != 0 {
		t.Fatalf("plain success should print nothing: %v %q", err, out.String())
	}
}
