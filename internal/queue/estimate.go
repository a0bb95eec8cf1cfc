package queue

import (
	"time"

	"shower_intake/internal/models"
)

// Estimate is the projected shower window for a newly checked-in guest.
type Estimate struct {
	ExpectedStart time.Time `json:"expected_start_time_at"`
	ExpectedEnd   time.Time `json:"expected_end_time_at"`
}

// EstimateTimes projects start and end for the guest at queuePosition using a
// fixed slot of shower plus cleaning time per guest ahead. busyResources is
// accepted for callers but does not change the serial estimate.
func EstimateTimes(checkin time.Time, queuePosition, busyResources int, d models.Durations) Estimate {
	if queuePosition < 1 {
		queuePosition = 1
	}
	wait := time.Duration(queuePosition-1) * d.Slot()
	start := checkin.Add(wait)
	return Estimate{
		ExpectedStart: start,
		ExpectedEnd:   start.Add(d.Shower),
	}
}
