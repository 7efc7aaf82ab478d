package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultScope/internal/app"
	"vaultScope/internal/metrics"
	"vaultScope/internal/model"
	"vaultScope/internal/view"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay connected, refresh periodically and follow wallet changes",
		RunE:  runWatch,
	}
	cmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address (e.g. :9102)")
	cmd.Flags().Duration("refresh-interval", 30*time.Second, "snapshot refresh interval")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ctx, rt, done, err := setup(cmd, app.OpenOptions{
		OnSnapshot: func(s model.Snapshot) {
			d := view.BuildDashboard(s)
			fmt.Fprintf(out, "%s  %s  %s  deposit %s  roi %s  referral %s  %s\n",
				s.FetchedAt.Format(time.RFC3339), d.Address, d.Rank.Name,
				d.ActiveDeposit, d.PendingROI, d.PendingReferral, d.Lock.Text)
		},
	})
	if err != nil {
		return err
	}
	defer done()

	if rt.cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: rt.cfg.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		rt.logger.Info("metrics listening", zap.String("addr", rt.cfg.MetricsAddr))
	}

	if err := rt.connect(ctx); err != nil {
		return err
	}
	rt.logger.Info("watching",
		zap.String("account", rt.app.Session().Current().Address.Hex()),
		zap.Duration("refresh_interval", rt.cfg.RefreshInterval),
	)

	rt.app.Session().Run(ctx)
	return nil
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
