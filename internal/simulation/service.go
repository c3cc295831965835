package simulation

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/core/common/validation"
	simulationDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/simulation"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/frahmantamala/salary-simulator/internal/reference"
)

type RepositoryAPI interface {
	// Get returns nil when the row does not exist or belongs to another user.
	Get(ctx context.Context, id, userID int64, withRelations bool) (*simulationDatamodel.Simulation, error)
	Create(ctx context.Context, s *simulationDatamodel.Simulation) error
	// Update overwrites the row owned by s.UserID and reports whether it existed.
	Update(ctx context.Context, s *simulationDatamodel.Simulation) (bool, error)
	UpdateSalary(ctx context.Context, id, userID int64, salary float64) (bool, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	// RecalculateAll recomputes every simulation of the user inside one
	// transaction and returns the rows it rewrote.
	RecalculateAll(ctx context.Context, userID int64, compute func(*simulationDatamodel.Simulation) float64) ([]*simulationDatamodel.Simulation, error)
}

// SummaryReader serves the joined list rows.
type SummaryReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Summary, error)
}

// ReferenceLookup resolves reference rows, failing with not-found errors.
type ReferenceLookup interface {
	GetJob(ctx context.Context, id int64) (*reference.Job, error)
	GetExperience(ctx context.Context, id int64) (*reference.Experience, error)
	GetSeniority(ctx context.Context, id int64) (*reference.Seniority, error)
}

type Service struct {
	repo       RepositoryAPI
	summaries  SummaryReader
	references ReferenceLookup
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, summaries SummaryReader, references ReferenceLookup, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop
	}
	return &Service{
		repo:       repo,
		summaries:  summaries,
		references: references,
		publisher:  publisher,
		logger:     logger,
	}
}

// List returns the user's simulations, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]*Summary, error) {
	return s.Recent(ctx, userID, 0)
}

// Recent returns at most limit simulations, newest first; 0 means no limit.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]*Summary, error) {
	rows, err := s.summaries.ListByUser(ctx, userID, limit)
	if err != nil {
		s.logger.Error("failed to list simulations", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to list simulations", err)
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id, userID int64, withRelations bool) (*Simulation, error) {
	row, err := s.repo.Get(ctx, id, userID, withRelations)
	if err != nil {
		s.logger.Error("failed to get simulation", "simulation_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get simulation", err)
	}
	if row == nil {
		return nil, errors.ErrSimulationNotFound
	}
	return FromDataModel(row), nil
}

// resolved is a validated input with its reference rows loaded.
type resolved struct {
	name       string
	job        *reference.Job
	experience *reference.Experience
	seniority  *reference.Seniority
}

func (r *resolved) salary() float64 {
	return Compute(r.job, r.experience, r.seniority)
}

// resolve validates the input, first failure wins in the order name, job,
// experience, seniority, then checks that every referenced row exists.
func (s *Service) resolve(ctx context.Context, in Input) (*resolved, error) {
	name := strings.TrimSpace(in.Name)

	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(255)
	v.Field("job", in.JobID).Required()
	v.Field("experience", in.ExperienceID).Required()
	v.Field("seniority", in.SeniorityID).Required()
	if err := v.ValidateFirst(); err != nil {
		return nil, err
	}

	job, err := s.references.GetJob(ctx, *in.JobID)
	if err != nil {
		return nil, err
	}
	experience, err := s.references.GetExperience(ctx, *in.ExperienceID)
	if err != nil {
		return nil, err
	}
	seniority, err := s.references.GetSeniority(ctx, *in.SeniorityID)
	if err != nil {
		return nil, err
	}

	return &resolved{name: name, job: job, experience: experience, seniority: seniority}, nil
}

func (s *Service) Create(ctx context.Context, userID int64, in Input) (*Simulation, error) {
	r, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	row := &simulationDatamodel.Simulation{
		Name:         r.name,
		JobID:        r.job.ID,
		ExperienceID: r.experience.ID,
		SeniorityID:  r.seniority.ID,
		Salary:       r.salary(),
		UserID:       userID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create simulation", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to create simulation", err)
	}

	s.logger.Info("simulation created", "simulation_id", row.ID, "user_id", userID, "salary", row.Salary)
	s.publish(ctx, events.NewSimulationCalculatedEvent(row.ID, userID, row.Salary, events.ReasonCreated))

	sim := FromDataModel(row)
	sim.Job, sim.Experience, sim.Seniority = r.job, r.experience, r.seniority
	return sim, nil
}

// Update recalculates the simulation from the submitted selections and
// stores them over the existing row.
func (s *Service) Update(ctx context.Context, id, userID int64, in Input) (*Simulation, error) {
	existing, err := s.repo.Get(ctx, id, userID, false)
	if err != nil {
		return nil, errors.NewInternalError("failed to get simulation", err)
	}
	if existing == nil {
		return nil, errors.ErrSimulationNotFound
	}

	r, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	existing.Name = r.name
	existing.JobID = r.job.ID
	existing.ExperienceID = r.experience.ID
	existing.SeniorityID = r.seniority.ID
	existing.Salary = r.salary()

	ok, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("failed to update simulation", "simulation_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update simulation", err)
	}
	if !ok {
		return nil, errors.ErrSimulationNotFound
	}

	s.logger.Info("simulation calculated", "simulation_id", id, "user_id", userID, "salary", existing.Salary)
	s.publish(ctx, events.NewSimulationCalculatedEvent(id, userID, existing.Salary, events.ReasonCalculated))

	sim := FromDataModel(existing)
	sim.Job, sim.Experience, sim.Seniority = r.job, r.experience, r.seniority
	return sim, nil
}

// Refresh recomputes the salary from the current values of the linked
// reference rows.
func (s *Service) Refresh(ctx context.Context, id, userID int64) (*Simulation, error) {
	row, err := s.repo.Get(ctx, id, userID, true)
	if err != nil {
		return nil, errors.NewInternalError("failed to get simulation", err)
	}
	if row == nil {
		return nil, errors.ErrSimulationNotFound
	}

	row.Salary = ComputeDataModel(row)
	ok, err := s.repo.UpdateSalary(ctx, id, userID, row.Salary)
	if err != nil {
		s.logger.Error("failed to refresh simulation", "simulation_id", id, "error", err)
		return nil, errors.NewInternalError("failed to refresh simulation", err)
	}
	if !ok {
		return nil, errors.ErrSimulationNotFound
	}

	s.logger.Info("simulation refreshed", "simulation_id", id, "user_id", userID, "salary", row.Salary)
	s.publish(ctx, events.NewSimulationCalculatedEvent(id, userID, row.Salary, events.ReasonRefreshed))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	ok, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		s.logger.Error("failed to delete simulation", "simulation_id", id, "error", err)
		return errors.NewInternalError("failed to delete simulation", err)
	}
	if !ok {
		return errors.ErrSimulationNotFound
	}

	s.logger.Info("simulation deleted", "simulation_id", id, "user_id", userID)
	s.publish(ctx, events.NewSimulationDeletedEvent(id, userID))
	return nil
}

// RefreshAll recomputes every simulation of the user. Either all rows are
// rewritten or none.
func (s *Service) RefreshAll(ctx context.Context, userID int64) (int, error) {
	rows, err := s.repo.RecalculateAll(ctx, userID, ComputeDataModel)
	if err != nil {
		s.logger.Error("failed to refresh simulations", "user_id", userID, "error", err)
		return 0, errors.NewInternalError("failed to refresh simulations", err)
	}

	for _, row := range rows {
		s.publish(ctx, events.NewSimulationCalculatedEvent(row.ID, userID, row.Salary, events.ReasonRefreshed))
	}
	s.logger.Info("simulations refreshed", "user_id", userID, "count", len(rows))
	return len(rows), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
