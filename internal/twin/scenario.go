package twin

import (
	"time"

	"github.com/google/uuid"
)

type ScenarioType string

const (
	TrainFailure     ScenarioType = "train_failure"
	StationClosure   ScenarioType = "station_closure"
	MaintenanceDelay ScenarioType = "maintenance_delay"
	WeatherImpact    ScenarioType = "weather_impact"
)

var ScenarioTypes = []ScenarioType{TrainFailure, StationClosure, MaintenanceDelay, WeatherImpact}

const DefaultScenarioDuration = 30 // minutes

// Scenario is a what-if request from the simulation form.
type Scenario struct {
	Type     ScenarioType `json:"type"`
	Asset    string       `json:"asset"`
	Duration int          `json:"duration"` // minutes
}

// Normalized returns s with unknown or missing inputs replaced by defaults.
func (s Scenario) Normalized() Scenario {
	known := false
	for _, t := range ScenarioTypes {
		if s.Type == t {
			known = true
			break
		}
	}
	if !known {
		s.Type = TrainFailure
	}
	if s.Duration <= 0 {
		s.Duration = DefaultScenarioDuration
	}
	return s
}

// Impact is the outcome of one simulation run.
type Impact struct {
	RunID             uuid.UUID `json:"runId"`
	Scenario          Scenario  `json:"scenario"`
	AffectedServices  int       `json:"affectedServices"`
	PassengerImpact   int       `json:"passengerImpact"`
	RevenueLoss       int       `json:"revenueLoss"`
	RecoveryMinutes   int       `json:"recoveryMinutes"`
	AlternativeRoutes int       `json:"alternativeRoutes"`
	CompletedAt       time.Time `json:"completedAt"`
}
