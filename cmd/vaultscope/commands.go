package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vaultScope/internal/app"
	"vaultScope/internal/model"
	"vaultScope/internal/notify"
	"vaultScope/internal/view"
	"vaultScope/internal/workflow"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show protocol liquidity locked in the lending pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			_, tvl, err := rt.app.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "Total value locked: %s\n", tvl)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Connect and print the account dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			if err := rt.connect(ctx); err != nil {
				return err
			}
			d, ok := rt.app.Dashboard()
			if !ok {
				if _, err := rt.app.Refresh(ctx); err != nil {
					return err
				}
				d, _ = rt.app.Dashboard()
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(rt.out)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printDashboard(rt.out, d)
			if link, err := rt.app.ReferralLink(); err == nil {
				fmt.Fprintf(rt.out, "Referral link:     %s\n", link)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the dashboard as JSON")
	cmd.Flags().String("referral-base", "", "base URL for the referral link")
	return cmd
}

func newInvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invest",
		Short: "Approve and invest USDT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, referrer := investInput(cmd)

			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			if err := rt.connect(ctx); err != nil {
				return err
			}
			if parsed, err := model.ParseAmount(amount); err == nil {
				rank := uint8(0)
				if snap, ok := rt.app.Snapshot(); ok {
					rank = snap.Rank
				}
				calc := view.BuildCalculator(parsed, rank)
				fmt.Fprintf(rt.out, "Investing %s, expected %s daily, %s over 60 days (%s boost)\n", calc.Net, calc.Daily, calc.Total, calc.Boost)
			}
			return presentOutcome(rt.out, rt.app.Workflows().Invest(ctx, amount, referrer), rt.app.Dashboard)
		},
	}
	cmd.Flags().String("amount", "10", "amount in USDT")
	cmd.Flags().String("referrer", "", "referrer address")
	cmd.Flags().String("ref-link", "", "referral link containing ?ref=<address>")
	return cmd
}

func newClaimCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			if err := rt.connect(ctx); err != nil {
				return err
			}
			if use == "claim-roi" {
				return presentOutcome(rt.out, rt.app.Workflows().ClaimROI(ctx), rt.app.Dashboard)
			}
			return presentOutcome(rt.out, rt.app.Workflows().ClaimReferralBonus(ctx), rt.app.Dashboard)
		},
	}
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw the active deposit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			if err := rt.connect(ctx); err != nil {
				return err
			}
			confirm, err := rt.app.WithdrawConfirmation()
			if errors.Is(err, view.ErrNoActiveDeposit) {
				rt.app.Notify(notify.LevelError, "No active deposit to withdraw")
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(rt.out, "Active deposit:  %s\nWithdrawal fee:  %s\nYou receive:     %s\n%s %s\n",
				confirm.Amount, confirm.Fee, confirm.Receive, confirm.Warning, confirm.Explanation)

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !askConfirm(cmd.InOrStdin(), rt.out) {
				rt.logger.Info("withdraw cancelled")
				return nil
			}
			return presentOutcome(rt.out, rt.app.Workflows().WithdrawCapital(ctx), rt.app.Dashboard)
		},
	}
	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	return cmd
}

func newCheckRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-rates",
		Short: "Compare on-chain rank boosts with the local projection table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			drifts, err := rt.app.CheckRates(ctx)
			if err != nil {
				return err
			}
			if len(drifts) == 0 {
				fmt.Fprintln(rt.out, "All rank boosts match the contract")
				return nil
			}
			for _, d := range drifts {
				fmt.Fprintf(rt.out, "%s: local %d bp, contract %s bp\n", model.RankByIndex(d.Rank).Name, d.Local, d.OnChain)
			}
			return fmt.Errorf("%d rank boost(s) drifted", len(drifts))
		},
	}
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := setup(cmd, app.OpenOptions{})
			if err != nil {
				return err
			}
			defer done()

			rt.app.Session().Disconnect(ctx)
			rt.app.Notify(notify.LevelInfo, "Wallet disconnected")
			return nil
		},
	}
}

// investInput reads the amount and referrer flags. A referral link only applies when it carries a
// valid address and no explicit referrer was given.
func investInput(cmd *cobra.Command) (string, string) {
	amount, _ := cmd.Flags().GetString("amount")
	referrer, _ := cmd.Flags().GetString("referrer")
	if link, _ := cmd.Flags().GetString("ref-link"); link != "" && referrer == "" {
		if ref, ok := workflow.ReferrerFromLink(link); ok {
			referrer = ref
		}
	}
	return amount, referrer
}

// presentOutcome applies the outcome's follow-up to the terminal and turns failures into errors.
func presentOutcome(w io.Writer, out workflow.Outcome, dashboard func() (view.Dashboard, bool)) error {
	if !out.OK {
		return outcomeErr(out)
	}
	if out.ResetAmount != "" {
		fmt.Fprintf(w, "Amount reset to %s USDT\n", out.ResetAmount)
	}
	if out.Navigate == workflow.NavigateDashboard || out.CloseDialog {
		if d, ok := dashboard(); ok {
			printDashboard(w, d)
		}
	}
	return nil
}

func outcomeErr(out workflow.Outcome) error {
	if out.OK {
		return nil
	}
	if out.Err != nil {
		return out.Err
	}
	return errors.New(out.Message)
}

func askConfirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Proceed? [y/N]: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printDashboard(out io.Writer, d view.Dashboard) {
	fmt.Fprintf(out, "Account:           %s\n", d.Address)
	fmt.Fprintf(out, "Rank:              %s (%s)\n", d.Rank.Name, d.Boost)
	fmt.Fprintf(out, "Active deposit:    %s\n", d.ActiveDeposit)
	fmt.Fprintf(out, "Total deposited:   %s\n", d.TotalDeposited)
	fmt.Fprintf(out, "Pending ROI:       %s\n", d.PendingROI)
	fmt.Fprintf(out, "Pending referral:  %s\n", d.PendingReferral)
	fmt.Fprintf(out, "Available:         %s\n", d.Available)
	fmt.Fprintf(out, "Wallet balance:    %s\n", d.WalletBalance)
	fmt.Fprintf(out, "Lock:              %s (%s, %s to %s)\n", d.Lock.Text, d.Lock.ProgressText, d.Lock.Start, d.Lock.End)
	fmt.Fprintf(out, "Directs:           %d (%d qualified)\n", d.Directs, d.QualifiedDirects)
	fmt.Fprintf(out, "Team volume:       %s\n", d.TeamVolume)
	fmt.Fprintf(out, "Referral earnings: %s\n", d.ReferralEarnings)
	fmt.Fprintf(out, "Withdraw fee:      %s\n", d.WithdrawFee)
	for _, tier := range d.Qualification {
		mark := " "
		if tier.Qualified {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] Level %d  %3.0f%%\n", mark, tier.Level, tier.Progress)
	}
	for _, step := range d.RankProgress {
		current := ""
		if step.Current {
			current = " (current)"
		}
		fmt.Fprintf(out, "  %-9s %3.0f%%%s\n", step.Rank, step.Progress, current)
	}
}
