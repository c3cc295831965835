package postgres

import (
	"context"
	"errors"
	"fmt"

	appErrors "github.com/frahmantamala/salary-simulator/internal"
	referenceDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/reference"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	"gorm.io/gorm"
)

const orderColumn = "sort_order ASC, id ASC"

type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) reference.RepositoryAPI {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) ListJobs(ctx context.Context) ([]*referenceDatamodel.Job, error) {
	var jobs []*referenceDatamodel.Job
	err := r.db.WithContext(ctx).Order(orderColumn).Find(&jobs).Error
	return jobs, err
}

func (r *ReferenceRepository) ListExperiences(ctx context.Context) ([]*referenceDatamodel.Experience, error) {
	var experiences []*referenceDatamodel.Experience
	err := r.db.WithContext(ctx).Order(orderColumn).Find(&experiences).Error
	return experiences, err
}

func (r *ReferenceRepository) ListSeniorities(ctx context.Context) ([]*referenceDatamodel.Seniority, error) {
	var seniorities []*referenceDatamodel.Seniority
	err := r.db.WithContext(ctx).Order(orderColumn).Find(&seniorities).Error
	return seniorities, err
}

func (r *ReferenceRepository) GetJob(ctx context.Context, id int64) (*referenceDatamodel.Job, error) {
	var job referenceDatamodel.Job
	if err := first(r.db.WithContext(ctx), &job, id); err != nil || job.ID == 0 {
		return nil, err
	}
	return &job, nil
}

func (r *ReferenceRepository) GetExperience(ctx context.Context, id int64) (*referenceDatamodel.Experience, error) {
	var experience referenceDatamodel.Experience
	if err := first(r.db.WithContext(ctx), &experience, id); err != nil || experience.ID == 0 {
		return nil, err
	}
	return &experience, nil
}

func (r *ReferenceRepository) GetSeniority(ctx context.Context, id int64) (*referenceDatamodel.Seniority, error) {
	var seniority referenceDatamodel.Seniority
	if err := first(r.db.WithContext(ctx), &seniority, id); err != nil || seniority.ID == 0 {
		return nil, err
	}
	return &seniority, nil
}

// first loads the row by id, leaving dest untouched when it does not exist.
func first(db *gorm.DB, dest interface{}, id int64) error {
	err := db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (r *ReferenceRepository) SaveWeights(ctx context.Context, updates []reference.WeightUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			model, notFound, err := modelFor(u.Table)
			if err != nil {
				return err
			}
			res := tx.Model(model).Where("id = ?", u.ID).Update("value", u.Value)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return notFound(u.ID)
			}
		}
		return nil
	})
}

func modelFor(kind reference.Kind) (interface{}, func(int64) *appErrors.AppError, error) {
	switch kind {
	case reference.KindJob:
		return &referenceDatamodel.Job{}, appErrors.NewJobNotFoundError, nil
	case reference.KindExperience:
		return &referenceDatamodel.Experience{}, appErrors.NewExperienceNotFoundError, nil
	case reference.KindSeniority:
		return &referenceDatamodel.Seniority{}, appErrors.NewSeniorityNotFoundError, nil
	}
	return nil, nil, fmt.Errorf("unknown reference table %q", kind)
}

func (r *ReferenceRepository) Ensure(ctx context.Context, kind reference.Kind, item reference.Item) (int64, error) {
	db := r.db.WithContext(ctx)
	switch kind {
	case reference.KindJob:
		row := reference.JobToDataModel((*reference.Job)(&item))
		err := db.Where(referenceDatamodel.Job{Name: item.Name}).FirstOrCreate(row).Error
		return row.ID, err
	case reference.KindExperience:
		row := reference.ExperienceToDataModel((*reference.Experience)(&item))
		err := db.Where(referenceDatamodel.Experience{Name: item.Name}).FirstOrCreate(row).Error
		return row.ID, err
	case reference.KindSeniority:
		row := reference.SeniorityToDataModel((*reference.Seniority)(&item))
		err := db.Where(referenceDatamodel.Seniority{Name: item.Name}).FirstOrCreate(row).Error
		return row.ID, err
	}
	return 0, fmt.Errorf("unknown reference table %q", kind)
}
