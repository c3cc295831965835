package reference

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/core/common/validation"
	referenceDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/reference"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
)

type RepositoryAPI interface {
	ListJobs(ctx context.Context) ([]*referenceDatamodel.Job, error)
	ListExperiences(ctx context.Context) ([]*referenceDatamodel.Experience, error)
	ListSeniorities(ctx context.Context) ([]*referenceDatamodel.Seniority, error)
	GetJob(ctx context.Context, id int64) (*referenceDatamodel.Job, error)
	GetExperience(ctx context.Context, id int64) (*referenceDatamodel.Experience, error)
	GetSeniority(ctx context.Context, id int64) (*referenceDatamodel.Seniority, error)
	// SaveWeights applies every update or none of them.
	SaveWeights(ctx context.Context, updates []WeightUpdate) error
	// Ensure inserts the row unless one with the same name exists and
	// returns the stored id.
	Ensure(ctx context.Context, kind Kind, item Item) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListAll returns jobs, experiences and seniorities ordered by their order.
func (s *Service) ListAll(ctx context.Context) (*Catalog, error) {
	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		s.logger.Error("failed to list jobs", "error", err)
		return nil, errors.NewInternalError("failed to list jobs", err)
	}
	experiences, err := s.repo.ListExperiences(ctx)
	if err != nil {
		s.logger.Error("failed to list experiences", "error", err)
		return nil, errors.NewInternalError("failed to list experiences", err)
	}
	seniorities, err := s.repo.ListSeniorities(ctx)
	if err != nil {
		s.logger.Error("failed to list seniorities", "error", err)
		return nil, errors.NewInternalError("failed to list seniorities", err)
	}

	catalog := &Catalog{
		Jobs:        make([]*Job, 0, len(jobs)),
		Experiences: make([]*Experience, 0, len(experiences)),
		Seniorities: make([]*Seniority, 0, len(seniorities)),
	}
	for _, j := range jobs {
		catalog.Jobs = append(catalog.Jobs, JobFromDataModel(j))
	}
	for _, e := range experiences {
		catalog.Experiences = append(catalog.Experiences, ExperienceFromDataModel(e))
	}
	for _, sn := range seniorities {
		catalog.Seniorities = append(catalog.Seniorities, SeniorityFromDataModel(sn))
	}
	return catalog, nil
}

func (s *Service) GetJob(ctx context.Context, id int64) (*Job, error) {
	m, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load job", err)
	}
	if m == nil {
		return nil, errors.NewJobNotFoundError(id)
	}
	return JobFromDataModel(m), nil
}

func (s *Service) GetExperience(ctx context.Context, id int64) (*Experience, error) {
	m, err := s.repo.GetExperience(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load experience", err)
	}
	if m == nil {
		return nil, errors.NewExperienceNotFoundError(id)
	}
	return ExperienceFromDataModel(m), nil
}

func (s *Service) GetSeniority(ctx context.Context, id int64) (*Seniority, error) {
	m, err := s.repo.GetSeniority(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load seniority", err)
	}
	if m == nil {
		return nil, errors.NewSeniorityNotFoundError(id)
	}
	return SeniorityFromDataModel(m), nil
}

// SaveWeights validates and applies the submitted weights in one go.
func (s *Service) SaveWeights(ctx context.Context, updates []WeightUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	v := validation.NewValidator()
	for _, u := range updates {
		u := u
		v.Field("value", u.Value).Finite(errors.ErrCodeInvalidWeight)
		v.Field("table", string(u.Table)).Custom(func(interface{}) *errors.AppError {
			if _, err := ParseKind(string(u.Table)); err != nil {
				return errors.NewValidationFieldError("table", err.Error(), errors.ErrCodeInvalidTable)
			}
			return nil
		})
	}
	if err := v.ValidateFirst(); err != nil {
		return err
	}

	if err := s.repo.SaveWeights(ctx, updates); err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to save weights", "error", err)
		return errors.NewInternalError("failed to save weights", err)
	}

	counts := make(map[string]int)
	for _, u := range updates {
		counts[string(u.Table)]++
	}
	s.logger.Info("weights saved", "updates", len(updates))
	if err := s.publisher.Publish(ctx, events.NewWeightsSavedEvent(counts)); err != nil {
		s.logger.Warn("failed to publish weights saved event", "error", err)
	}
	return nil
}

// Seed stores every row of the catalog that is not present yet.
func (s *Service) Seed(ctx context.Context, catalog *Catalog) error {
	for _, j := range catalog.Jobs {
		id, err := s.repo.Ensure(ctx, KindJob, Item(*j))
		if err != nil {
			return err
		}
		j.ID = id
	}
	for _, e := range catalog.Experiences {
		id, err := s.repo.Ensure(ctx, KindExperience, Item(*e))
		if err != nil {
			return err
		}
		e.ID = id
	}
	for _, sn := range catalog.Seniorities {
		id, err := s.repo.Ensure(ctx, KindSeniority, Item(*sn))
		if err != nil {
			return err
		}
		sn.ID = id
	}
	s.logger.Info("reference data seeded",
		"jobs", len(catalog.Jobs),
		"experiences", len(catalog.Experiences),
		"seniorities", len(catalog.Seniorities))
	return nil
}
