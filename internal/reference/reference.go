package reference

import (
	"fmt"
	"strings"

	referenceDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/reference"
)

// Kind names one of the three reference tables.
type Kind string

const (
	KindJob        Kind = "job"
	KindExperience Kind = "experience"
	KindSeniority  Kind = "seniority"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindJob, KindExperience, KindSeniority:
		return k, nil
	}
	return "", fmt.Errorf("unknown reference table %q", s)
}

// Item is the shared shape of jobs, experiences and seniorities.
type Item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Order int     `json:"order"`
}

// Job value is a base yearly amount.
type Job Item

// Experience value is a multiplier applied to the job amount.
type Experience Item

// Seniority value is a flat bonus added on top.
type Seniority Item

func (j *Job) Weight() float64        { return j.Value }
func (j *Job) IsNil() bool            { return j == nil }
func (e *Experience) Weight() float64 { return e.Value }
func (e *Experience) IsNil() bool     { return e == nil }
func (s *Seniority) Weight() float64  { return s.Value }
func (s *Seniority) IsNil() bool      { return s == nil }

// Catalog is every reference row, each list ordered by Order ascending.
type Catalog struct {
	Jobs        []*Job        `json:"jobs"`
	Experiences []*Experience `json:"experiences"`
	Seniorities []*Seniority  `json:"seniorities"`
}

// WeightUpdate sets the value of one reference row.
type WeightUpdate struct {
	Table Kind    `json:"table"`
	ID    int64   `json:"id"`
	Value float64 `json:"value"`
}

func JobFromDataModel(m *referenceDatamodel.Job) *Job {
	if m == nil {
		return nil
	}
	return &Job{ID: m.ID, Name: m.Name, Value: m.Value, Order: m.Order}
}

func ExperienceFromDataModel(m *referenceDatamodel.Experience) *Experience {
	if m == nil {
		return nil
	}
	return &Experience{ID: m.ID, Name: m.Name, Value: m.Value, Order: m.Order}
}

func SeniorityFromDataModel(m *referenceDatamodel.Seniority) *Seniority {
	if m == nil {
		return nil
	}
	return &Seniority{ID: m.ID, Name: m.Name, Value: m.Value, Order: m.Order}
}

func JobToDataModel(j *Job) *referenceDatamodel.Job {
	return &referenceDatamodel.Job{ID: j.ID, Name: j.Name, Value: j.Value, Order: j.Order}
}

func ExperienceToDataModel(e *Experience) *referenceDatamodel.Experience {
	return &referenceDatamodel.Experience{ID: e.ID, Name: e.Name, Value: e.Value, Order: e.Order}
}

func SeniorityToDataModel(s *Seniority) *referenceDatamodel.Seniority {
	return &referenceDatamodel.Seniority{ID: s.ID, Name: s.Name, Value: s.Value, Order: s.Order}
}
