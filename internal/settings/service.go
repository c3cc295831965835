package settings

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/salary-simulator/internal/reference"
)

// ReferenceAPI is the reference service as seen from the settings screen.
type ReferenceAPI interface {
	ListAll(ctx context.Context) (*reference.Catalog, error)
	SaveWeights(ctx context.Context, updates []reference.WeightUpdate) error
}

// SimulationRefresher recomputes every simulation of a user.
type SimulationRefresher interface {
	RefreshAll(ctx context.Context, userID int64) (int, error)
}

type Service struct {
	references  ReferenceAPI
	simulations SimulationRefresher
	logger      *slog.Logger
}

func NewService(references ReferenceAPI, simulations SimulationRefresher, logger *slog.Logger) *Service {
	return &Service{
		references:  references,
		simulations: simulations,
		logger:      logger,
	}
}

// ListAll returns the three reference tables, each in display order.
func (s *Service) ListAll(ctx context.Context) (*reference.Catalog, error) {
	return s.references.ListAll(ctx)
}

func (s *Service) SaveWeights(ctx context.Context, updates []reference.WeightUpdate) error {
	return s.references.SaveWeights(ctx, updates)
}

// RefreshAllSimulationsForUser recomputes the user's simulations from the
// current weights and returns how many were rewritten.
func (s *Service) RefreshAllSimulationsForUser(ctx context.Context, userID int64) (int, error) {
	count, err := s.simulations.RefreshAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("settings refresh completed", "user_id", userID, "count", count)
	return count, nil
}
