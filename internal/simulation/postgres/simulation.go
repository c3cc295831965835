package postgres

import (
	"context"
	"errors"

	simulationDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/simulation"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SimulationRepository struct {
	db *gorm.DB
}

func NewSimulationRepository(db *gorm.DB) simulation.RepositoryAPI {
	return &SimulationRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Job").Preload("Experience").Preload("Seniority")
}

func (r *SimulationRepository) Get(ctx context.Context, id, userID int64, relations bool) (*simulationDatamodel.Simulation, error) {
	q := r.db.WithContext(ctx)
	if relations {
		q = withRelations(q)
	}

	var sim simulationDatamodel.Simulation
	err := q.Where("id = ? AND user_id = ?", id, userID).First(&sim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sim, nil
}

func (r *SimulationRepository) Create(ctx context.Context, sim *simulationDatamodel.Simulation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sim).Error
}

func (r *SimulationRepository) Update(ctx context.Context, sim *simulationDatamodel.Simulation) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&simulationDatamodel.Simulation{}).
		Where("id = ? AND user_id = ?", sim.ID, sim.UserID).
		Updates(map[string]interface{}{
			"name":          sim.Name,
			"job_id":        sim.JobID,
			"experience_id": sim.ExperienceID,
			"seniority_id":  sim.SeniorityID,
			"salary":        sim.Salary,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *SimulationRepository) UpdateSalary(ctx context.Context, id, userID int64, salary float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&simulationDatamodel.Simulation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("salary", salary)
	return res.RowsAffected > 0, res.Error
}

func (r *SimulationRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&simulationDatamodel.Simulation{})
	return res.RowsAffected > 0, res.Error
}

func (r *SimulationRepository) RecalculateAll(ctx context.Context, userID int64, compute func(*simulationDatamodel.Simulation) float64) ([]*simulationDatamodel.Simulation, error) {
	var sims []*simulationDatamodel.Simulation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRelations(tx).Where("user_id = ?", userID).Order("id DESC").Find(&sims).Error; err != nil {
			return err
		}
		for _, sim := range sims {
			sim.Salary = compute(sim)
			if err := tx.Model(&simulationDatamodel.Simulation{}).
				Where("id = ?", sim.ID).
				Update("salary", sim.Salary).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sims, nil
}
