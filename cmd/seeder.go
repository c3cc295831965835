package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/auth"
	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	"github.com/spf13/cobra"
)

const (
	seedEmail    = "test@test.com"
	seedPassword = "test"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the reference tables, the demo account and two sample simulations. Existing rows are kept.`,
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

		return seedDatabase(cmd.Context(), db, cfg.Security, lg)
	},
}

// sampleSimulation picks catalog rows by position.
type sampleSimulation struct {
	name                       string
	job, experience, seniority int
}

var sampleSimulations = []sampleSimulation{
	{name: "My first simulation", job: 0, experience: 0, seniority: 0},
	{name: "My second simulation", job: 1, experience: 1, seniority: 1},
}

func seedDatabase(ctx context.Context, db *database.DB, security internal.SecurityConfig, lg *slog.Logger) error {
	svc := newServices(db, security, events.Nop, lg)

	catalog := reference.DefaultCatalog()
	if err := svc.References.Seed(ctx, catalog); err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}

	u, err := svc.Users.GetByEmail(ctx, seedEmail)
	if err != nil {
		return err
	}
	if u == nil {
		u, err = svc.Auth.Register(ctx, auth.JoinDTO{Email: seedEmail, Password: seedPassword})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", seedEmail, err)
		}
		lg.Info("seeded user", "email", u.Email)
	} else {
		lg.Info("user already exists", "email", u.Email)
	}

	existing, err := svc.Simulations.List(ctx, u.ID)
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, s := range existing {
		names[s.Name] = true
	}

	for _, sample := range sampleSimulations {
		if names[sample.name] {
			continue
		}
		sim, err := svc.Simulations.Create(ctx, u.ID, simulation.Input{
			Name:         sample.name,
			JobID:        &catalog.Jobs[sample.job].ID,
			ExperienceID: &catalog.Experiences[sample.experience].ID,
			SeniorityID:  &catalog.Seniorities[sample.seniority].ID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed simulation %q: %w", sample.name, err)
		}
		lg.Info("seeded simulation", "id", sim.ID, "name", sim.Name, "salary", sim.Salary)
	}

	return nil
}
