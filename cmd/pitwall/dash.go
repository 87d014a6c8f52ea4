package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zsiec/pitwall/internal/telemetry/dashboard"
)

func newDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Listen for telemetry and show it in a terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(&cfg.Logging, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx, cfg, log)
			if err != nil {
				return err
			}
			if err := rt.manager.Start(); err != nil {
				rt.close(log)
				return fmt.Errorf("failed to start telemetry: %w", err)
			}
			defer func() {
				if err := rt.manager.Stop(); err != nil {
					log.WithError(err).Error("Failed to stop telemetry")
				}
			}()

			model := dashboard.NewModel(rt.manager.Store(), rt.manager.Listener().Stats, &cfg.Telemetry.Dashboard)
			return dashboard.Run(ctx, model)
		},
	}
}
