package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/spf13/cobra"
)

var recalculateEmail string

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recompute every simulation of a user",
	Long:  `Recompute the salary of every simulation owned by the user from the current reference weights.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := bootstrap()
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg, lg)
		if err != nil {
			return err
		}
		defer db.Close()

		bus := events.NewEventBus(lg)
		bus.Subscribe(events.EventTypeSimulationCalculated, func(ctx context.Context, e events.Event) error {
			lg.Debug("simulation recalculated", "event_id", e.EventID(), "payload", e.Payload())
			return nil
		})
		svc := newServices(db, cfg.Security, events.SyncPublisher{Bus: bus}, lg)

		ctx := cmd.Context()
		u, err := svc.Users.GetByEmail(ctx, recalculateEmail)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("no user with email %s", recalculateEmail)
		}

		count, err := svc.Simulations.RefreshAll(ctx, u.ID)
		if err != nil {
			return err
		}

		lg.Info("simulations recalculated", "email", u.Email, "count", count)
		fmt.Fprintf(cmd.OutOrStdout(), "%d simulation(s) recalculated for %s\n", count, u.Email)
		return nil
	},
}

func init() {
	recalculateCmd.Flags().StringVarP(&recalculateEmail, "email", "e", "", "email of the user whose simulations are recomputed")
	_ = recalculateCmd.MarkFlagRequired("email")
}
