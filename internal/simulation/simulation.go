package simulation

import (
	"time"

	simulationDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/simulation"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	"github.com/frahmantamala/salary-simulator/internal/salary"
)

type Simulation struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name"`
	JobID        int64                 `json:"job_id"`
	ExperienceID int64                 `json:"experience_id"`
	SeniorityID  int64                 `json:"seniority_id"`
	Salary       float64               `json:"salary"`
	UserID       int64                 `json:"user_id"`
	Job          *reference.Job        `json:"job,omitempty"`
	Experience   *reference.Experience `json:"experience,omitempty"`
	Seniority    *reference.Seniority  `json:"seniority,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Summary is a list row with the reference names joined in.
type Summary struct {
	ID             int64   `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Salary         float64 `db:"salary" json:"salary"`
	JobName        string  `db:"job_name" json:"job"`
	ExperienceName string  `db:"experience_name" json:"experience"`
	SeniorityName  string  `db:"seniority_name" json:"seniority"`
}

// Input carries the submitted selections for create and calculate.
type Input struct {
	Name         string
	JobID        *int64
	ExperienceID *int64
	SeniorityID  *int64
}

// Compute returns the salary from the given reference rows.
func Compute(job *reference.Job, experience *reference.Experience, seniority *reference.Seniority) float64 {
	return salary.Calculate(&salary.Inputs{Job: job, Experience: experience, Seniority: seniority})
}

// ComputeDataModel recomputes a stored row from its preloaded references.
func ComputeDataModel(s *simulationDatamodel.Simulation) float64 {
	return Compute(
		reference.JobFromDataModel(s.Job),
		reference.ExperienceFromDataModel(s.Experience),
		reference.SeniorityFromDataModel(s.Seniority),
	)
}

func ToDataModel(s *Simulation) *simulationDatamodel.Simulation {
	return &simulationDatamodel.Simulation{
		ID:           s.ID,
		Name:         s.Name,
		JobID:        s.JobID,
		ExperienceID: s.ExperienceID,
		SeniorityID:  s.SeniorityID,
		Salary:       s.Salary,
		UserID:       s.UserID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// FromDataModel maps a row; references are included when they were preloaded.
func FromDataModel(s *simulationDatamodel.Simulation) *Simulation {
	return &Simulation{
		ID:           s.ID,
		Name:         s.Name,
		JobID:        s.JobID,
		ExperienceID: s.ExperienceID,
		SeniorityID:  s.SeniorityID,
		Salary:       s.Salary,
		UserID:       s.UserID,
		Job:          reference.JobFromDataModel(s.Job),
		Experience:   reference.ExperienceFromDataModel(s.Experience),
		Seniority:    reference.SeniorityFromDataModel(s.Seniority),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
