package settings

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/reference"
)

const (
	IntentSave    = "save"
	IntentRefresh = "refresh"
)

// WeightInput is one edited row of the settings form.
type WeightInput struct {
	Table string   `json:"table"`
	ID    int64    `json:"id"`
	Value *float64 `json:"value"`
}

// SettingsRequest is the settings form. Browsers post parallel table, id and
// value fields, one triple per row; JSON clients send the weights array.
type SettingsRequest struct {
	Intent  string        `json:"intent"`
	Weights []WeightInput `json:"weights"`

	malformed bool
}

func (r *SettingsRequest) BindForm(form url.Values) {
	r.Intent = strings.TrimSpace(form.Get("intent"))

	tables, ids, values := form["table"], form["id"], form["value"]
	if len(tables) != len(ids) || len(ids) != len(values) {
		r.malformed = true
		return
	}

	r.Weights = make([]WeightInput, 0, len(tables))
	for i := range tables {
		in := WeightInput{Table: strings.TrimSpace(tables[i])}
		in.ID, _ = strconv.ParseInt(strings.TrimSpace(ids[i]), 10, 64)
		if v, err := strconv.ParseFloat(strings.TrimSpace(values[i]), 64); err == nil {
			in.Value = &v
		}
		r.Weights = append(r.Weights, in)
	}
}

// ToUpdates checks the shape of every row; numeric values and table names
// are checked by the reference service.
func (r *SettingsRequest) ToUpdates() ([]reference.WeightUpdate, error) {
	if r.malformed {
		return nil, internal.NewValidationError("Invalid form data", internal.ErrCodeValidationFailed)
	}

	updates := make([]reference.WeightUpdate, 0, len(r.Weights))
	for _, w := range r.Weights {
		if w.ID <= 0 {
			return nil, internal.NewValidationFieldError("id", "Id is required", internal.ErrCodeRequiredField)
		}
		if w.Value == nil {
			return nil, internal.NewValidationFieldError("value", "Value is required", internal.ErrCodeRequiredField)
		}
		updates = append(updates, reference.WeightUpdate{
			Table: reference.Kind(strings.ToLower(w.Table)),
			ID:    w.ID,
			Value: *w.Value,
		})
	}
	return updates, nil
}

type SettingsPage struct {
	Catalog *reference.Catalog `json:"catalog"`
}
