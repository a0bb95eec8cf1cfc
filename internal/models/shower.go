package models

import "time"

// ShowerState is the lifecycle state of a physical shower unit.
type ShowerState string

const (
	ShowerReady                 ShowerState = "ready"
	ShowerInUse                 ShowerState = "in_use"
	ShowerCleaning              ShowerState = "cleaning"
	ShowerWaitingForMaintenance ShowerState = "waiting_for_maintenance"
)

// Shower is a shower resource. Timing fields are nil whenever Status does not
// use them; CurrentGuestID is set only while in use.
type Shower struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status ShowerState `json:"status"`

	StartTime       *time.Time `json:"start_time"`
	ExpectedEndTime *time.Time `json:"expected_end_time"`

	CleaningStartTime       *time.Time `json:"cleaning_start_time"`
	ExpectedCleaningEndTime *time.Time `json:"expected_cleaning_end_time"`

	CurrentGuestID string `json:"current_guest_id,omitempty"`
}

const (
	DefaultShowerDuration   = 20 * time.Minute
	DefaultCleaningDuration = 5 * time.Minute
)

// Durations are the fixed service times used for estimates and the resource timer.
type Durations struct {
	Shower   time.Duration
	Cleaning time.Duration
}

func DefaultDurations() Durations {
	return Durations{Shower: DefaultShowerDuration, Cleaning: DefaultCleaningDuration}
}

// Slot is the time one guest occupies a shower including cleaning.
func (d Durations) Slot() time.Duration {
	return d.Shower + d.Cleaning
}
