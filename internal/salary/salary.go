// Package salary holds the pure salary formula shared by every simulation
// operation.
package salary

// Weighted is anything carrying a numeric weight: a job base amount, an
// experience multiplier or a seniority bonus.
type Weighted interface {
	Weight() float64
}

// Inputs groups the three reference rows a salary is computed from.
type Inputs struct {
	Job        Weighted
	Experience Weighted
	Seniority  Weighted
}

// Calculate returns job * experience + seniority.
//
// A nil input, or an input missing any of its three parts, yields 0 instead
// of an error; callers validate existence before calling.
func Calculate(in *Inputs) float64 {
	if in == nil || isNil(in.Job) || isNil(in.Experience) || isNil(in.Seniority) {
		return 0
	}
	return in.Job.Weight()*in.Experience.Weight() + in.Seniority.Weight()
}

func isNil(w Weighted) bool {
	if w == nil {
		return true
	}
	if n, ok := w.(interface{ IsNil() bool }); ok {
		return n.IsNil()
	}
	return false
}

// Value is a bare weight, handy when only numbers are at hand.
type Value float64

func (v Value) Weight() float64 { return float64(v) }
