package main

import (
	"fmt"
	"io"
	"sync"

	"vaultScope/internal/workflow"
)

var actionLabels = map[workflow.Kind]string{
	workflow.KindInvest:        "Invest",
	workflow.KindClaimROI:      "Claim ROI",
	workflow.KindClaimReferral: "Claim referral bonus",
	workflow.KindWithdraw:      "Withdraw",
}

// consolePresenter prints a processing line while a workflow holds its control.
type consolePresenter struct {
	mu     sync.Mutex
	out    io.Writer
	active map[workflow.Kind]bool
}

func newConsolePresenter(out io.Writer) *consolePresenter {
	return &consolePresenter{out: out, active: make(map[workflow.Kind]bool)}
}

func (p *consolePresenter) BeginAction(kind workflow.Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[kind] = true
	fmt.Fprintf(p.out, "%s: Processing...\n", actionLabels[kind])
}

func (p *consolePresenter) EndAction(kind workflow.Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, kind)
}
