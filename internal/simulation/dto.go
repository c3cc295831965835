package simulation

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/salary-simulator/internal/reference"
	"github.com/frahmantamala/salary-simulator/internal/transport"
)

const (
	IntentRefresh   = "refresh"
	IntentDelete    = "delete"
	IntentCalculate = "calculate"
)

// SimulationRequest is the body of the new and edit forms.
type SimulationRequest struct {
	Intent     string `json:"intent,omitempty"`
	Name       string `json:"name"`
	Job        *int64 `json:"job"`
	Experience *int64 `json:"experience"`
	Seniority  *int64 `json:"seniority"`
}

func (r *SimulationRequest) BindForm(form url.Values) {
	r.Intent = strings.TrimSpace(form.Get("intent"))
	r.Name = form.Get("name")
	r.Job = transport.ParseID(form.Get("job"))
	r.Experience = transport.ParseID(form.Get("experience"))
	r.Seniority = transport.ParseID(form.Get("seniority"))
}

func (r *SimulationRequest) ToInput() Input {
	return Input{
		Name:         r.Name,
		JobID:        r.Job,
		ExperienceID: r.Experience,
		SeniorityID:  r.Seniority,
	}
}

// ListActionRequest is posted by the refresh and delete buttons of the list.
type ListActionRequest struct {
	Intent string `json:"intent"`
	ID     *int64 `json:"id"`
}

func (r *ListActionRequest) BindForm(form url.Values) {
	r.Intent = strings.TrimSpace(form.Get("intent"))
	r.ID = transport.ParseID(form.Get("id"))
}

type HomePage struct {
	Simulations []*Summary `json:"simulations"`
}

type ListPage struct {
	Simulations []*Summary `json:"simulations"`
}

// FormPage backs the new and edit pages. The selected values come from the
// stored simulation or from the rejected submission.
type FormPage struct {
	Catalog      *reference.Catalog `json:"catalog"`
	Simulation   *Simulation        `json:"simulation,omitempty"`
	Name         string             `json:"-"`
	JobID        int64              `json:"-"`
	ExperienceID int64              `json:"-"`
	SeniorityID  int64              `json:"-"`
}

func (p *FormPage) fillFromSimulation(s *Simulation) {
	p.Simulation = s
	p.Name = s.Name
	p.JobID = s.JobID
	p.ExperienceID = s.ExperienceID
	p.SeniorityID = s.SeniorityID
}

func (p *FormPage) fillFromRequest(r *SimulationRequest) {
	p.Name = r.Name
	p.JobID = deref(r.Job)
	p.ExperienceID = deref(r.Experience)
	p.SeniorityID = deref(r.Seniority)
}

func deref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
