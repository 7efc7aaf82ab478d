package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultScope/internal/model"
	"vaultScope/internal/view"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project daily and 60-day ROI for an amount at a rank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, _ := cmd.Flags().GetString("amount")
			rank, _ := cmd.Flags().GetUint8("rank")
			if rank > model.MaxRank {
				return fmt.Errorf("rank must be between 0 and %d", model.MaxRank)
			}
			amount, err := model.ParseAmount(input)
			if err != nil {
				return err
			}

			calc := view.BuildCalculator(amount, rank)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rank:          %s (%s)\n", model.RankByIndex(rank).Name, calc.Boost)
			fmt.Fprintf(out, "Net amount:    %s\n", calc.Net)
			fmt.Fprintf(out, "Daily ROI:     %s\n", calc.Daily)
			fmt.Fprintf(out, "60-day ROI:    %s\n", calc.Total)
			return nil
		},
	}
	cmd.Flags().String("amount", "10", "amount in USDT")
	cmd.Flags().Uint8("rank", 0, "rank ordinal (0 none, 1 Bronze ... 5 Diamond)")
	return cmd
}
