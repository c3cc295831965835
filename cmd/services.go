package cmd

import (
	"log/slog"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/auth"
	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	referencePostgres "github.com/frahmantamala/salary-simulator/internal/reference/postgres"
	"github.com/frahmantamala/salary-simulator/internal/settings"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	simulationPostgres "github.com/frahmantamala/salary-simulator/internal/simulation/postgres"
	"github.com/frahmantamala/salary-simulator/internal/user"
	userPostgres "github.com/frahmantamala/salary-simulator/internal/user/postgres"
)

// services is the domain layer shared by every command.
type services struct {
	References  *reference.Service
	Simulations *simulation.Service
	Users       *user.Service
	Auth        *auth.Service
	Settings    *settings.Service
}

func newServices(db *database.DB, security internal.SecurityConfig, publisher events.Publisher, lg *slog.Logger) *services {
	references := reference.NewService(referencePostgres.NewReferenceRepository(db.Gorm), publisher, lg)
	simulations := simulation.NewService(
		simulationPostgres.NewSimulationRepository(db.Gorm),
		simulationPostgres.NewSummaryReader(db.SQLX),
		references,
		publisher,
		lg,
	)
	users := user.NewService(userPostgres.NewUserRepository(db.Gorm), lg)

	return &services{
		References:  references,
		Simulations: simulations,
		Users:       users,
		Auth:        auth.NewService(users, security.BCryptCost, lg),
		Settings:    settings.NewService(references, simulations, lg),
	}
}
