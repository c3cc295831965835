package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSimulationCalculated = "simulation.calculated"
	EventTypeSimulationDeleted    = "simulation.deleted"
	EventTypeWeightsSaved         = "reference.weights_saved"
)

// Reasons a simulation salary was (re)computed.
const (
	ReasonCreated    = "created"
	ReasonCalculated = "calculated"
	ReasonRefreshed  = "refreshed"
)

type SimulationCalculatedEvent struct {
	BaseEvent
	SimulationID int64   `json:"simulation_id"`
	UserID       int64   `json:"user_id"`
	Salary       float64 `json:"salary"`
	Reason       string  `json:"reason"`
}

func NewSimulationCalculatedEvent(simulationID, userID int64, salary float64, reason string) *SimulationCalculatedEvent {
	return &SimulationCalculatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSimulationCalculated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"simulation_id": simulationID,
				"user_id":       userID,
				"salary":        salary,
				"reason":        reason,
			},
		},
		SimulationID: simulationID,
		UserID:       userID,
		Salary:       salary,
		Reason:       reason,
	}
}

type SimulationDeletedEvent struct {
	BaseEvent
	SimulationID int64 `json:"simulation_id"`
	UserID       int64 `json:"user_id"`
}

func NewSimulationDeletedEvent(simulationID, userID int64) *SimulationDeletedEvent {
	return &SimulationDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSimulationDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"simulation_id": simulationID,
				"user_id":       userID,
			},
		},
		SimulationID: simulationID,
		UserID:       userID,
	}
}

type WeightsSavedEvent struct {
	BaseEvent
	// Tables counts updated rows per reference table.
	Tables map[string]int `json:"tables"`
}

func NewWeightsSavedEvent(tables map[string]int) *WeightsSavedEvent {
	data := make(map[string]interface{}, len(tables))
	for table, count := range tables {
		data[table] = count
	}
	return &WeightsSavedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeWeightsSaved,
			Timestamp: time.Now(),
			Data:      data,
		},
		Tables: tables,
	}
}
