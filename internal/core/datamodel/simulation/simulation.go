package simulation

import (
	"time"

	"github.com/frahmantamala/salary-simulator/internal/core/datamodel/reference"
)

type Simulation struct {
	ID           int64                 `gorm:"primaryKey"`
	Name         string                `gorm:"column:name;not null"`
	JobID        int64                 `gorm:"column:job_id;not null"`
	ExperienceID int64                 `gorm:"column:experience_id;not null"`
	SeniorityID  int64                 `gorm:"column:seniority_id;not null"`
	Salary       float64               `gorm:"column:salary;not null;default:0"`
	UserID       int64                 `gorm:"column:user_id;not null;index"`
	Job          *reference.Job        `gorm:"foreignKey:JobID"`
	Experience   *reference.Experience `gorm:"foreignKey:ExperienceID"`
	Seniority    *reference.Seniority  `gorm:"foreignKey:SeniorityID"`
	CreatedAt    time.Time             `gorm:"column:created_at"`
	UpdatedAt    time.Time             `gorm:"column:updated_at"`
}

func (Simulation) TableName() string {
	return "simulations"
}
