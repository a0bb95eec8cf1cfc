package showers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shower_intake/internal/models"
)

var (
	T = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	d = models.Durations{Shower: 20 * time.Minute, Cleaning: 5 * time.Minute}
)

func minutes(n int) time.Time { return T.Add(time.Duration(n) * time.Minute) }

func TestFullCycleIsIdempotent(t *testing.T) {
	s := NewSet(1)[0]

	s, tr, err := Apply(s, Assign("guest-1"), T, d)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Equal(t, models.ShowerInUse, s.Status)
	assert.Equal(t, "guest-1", s.CurrentGuestID)
	assert.Equal(t, T, *s.StartTime)
	assert.Equal(t, minutes(20), *s.ExpectedEndTime)

	// not due yet
	s2, tr, err := Apply(s, Tick(), minutes(19), d)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Equal(t, s, s2)

	s, tr, err = Apply(s, Tick(), minutes(20), d)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Equal(t, "guest-1", tr.FinishedGuestID)
	assert.Equal(t, models.ShowerCleaning, s.Status)
	assert.Equal(t, minutes(25), *s.ExpectedCleaningEndTime)
	assert.Nil(t, s.StartTime)
	assert.Nil(t, s.ExpectedEndTime)
	assert.Empty(t, s.CurrentGuestID)

	s, tr, err = Apply(s, Tick(), minutes(25), d)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Empty(t, tr.FinishedGuestID)
	assert.Equal(t, models.Shower{ID: "1", Name: "Shower 1", Status: models.ShowerReady}, s)

	again, tr, err := Apply(s, Tick(), minutes(26), d)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Equal(t, s, again)
}

func TestStartCleaningEarly(t *testing.T) {
	s, _, err := Apply(NewSet(1)[0], Assign("g"), T, d)
	require.NoError(t, err)

	s, tr, err := Apply(s, StartCleaning(), minutes(7), d)
	require.NoError(t, err)
	assert.Equal(t, "g", tr.FinishedGuestID)
	assert.Equal(t, models.ShowerCleaning, s.Status)
	assert.Equal(t, minutes(7), *s.CleaningStartTime)
	assert.Equal(t, minutes(12), *s.ExpectedCleaningEndTime)

	// the original timer deadline has no effect any more
	s2, tr, err := Apply(s, Tick(), minutes(20), d)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Equal(t, models.ShowerReady, s2.Status)
}

func TestMarkReadyFromCleaning(t *testing.T) {
	s, _, _ := Apply(NewSet(1)[0], Assign("g"), T, d)
	s, _, _ = Apply(s, StartCleaning(), minutes(1), d)

	s, tr, err := Apply(s, MarkReady(), minutes(2), d)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Equal(t, models.ShowerReady, s.Status)
	assert.Nil(t, s.CleaningStartTime)
	assert.Nil(t, s.ExpectedCleaningEndTime)
}

func TestMaintenanceIsOperatorOnly(t *testing.T) {
	s, _, err := Apply(NewSet(1)[0], StartMaintenance(), T, d)
	require.NoError(t, err)
	assert.Equal(t, models.ShowerWaitingForMaintenance, s.Status)

	// the timer never moves a shower out of maintenance
	s2, tr, err := Apply(s, Tick(), minutes(600), d)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Equal(t, s, s2)

	_, _, err = Apply(s, Assign("g"), T, d)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	s, _, err = Apply(s, MarkReady(), minutes(1), d)
	require.NoError(t, err)
	assert.Equal(t, models.ShowerReady, s.Status)
}

func TestRejectedTransitionsLeaveShowerUnchanged(t *testing.T) {
	readyShower := NewSet(1)[0]
	inUse, _, _ := Apply(readyShower, Assign("g"), T, d)

	cases := []struct {
		name    string
		shower  models.Shower
		trigger Trigger
	}{
		{"assign while in use", inUse, Assign("h")},
		{"start cleaning while ready", readyShower, StartCleaning()},
		{"mark ready while ready", readyShower, MarkReady()},
		{"mark ready while in use", inUse, MarkReady()},
		{"maintenance while in use", inUse, StartMaintenance()},
		{"assign without guest", readyShower, Assign("")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, tr, err := Apply(tc.shower, tc.trigger, minutes(1), d)
			require.Error(t, err)
			var terr *TransitionError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tc.shower.ID, terr.ShowerID)
			assert.False(t, tr.Changed)
			assert.Equal(t, tc.shower, got)
		})
	}
}

func TestRemaining(t *testing.T) {
	s, _, _ := Apply(NewSet(1)[0], Assign("g"), T, d)
	assert.Equal(t, 20*time.Minute, Remaining(s, T))
	assert.Equal(t, 30*time.Second, Remaining(s, minutes(19).Add(30*time.Second)))
	assert.Equal(t, time.Duration(0), Remaining(s, minutes(21)))
	assert.Equal(t, time.Duration(0), Remaining(NewSet(1)[0], T))
}

func TestTickAll(t *testing.T) {
	set := NewSet(3)
	set[0], _, _ = Apply(set[0], Assign("a"), T, d)
	set[1], _, _ = Apply(set[1], Assign("b"), minutes(10), d)

	next, changed := TickAll(set, minutes(20), d)
	require.Len(t, changed, 1)
	assert.Equal(t, "1", changed[0].ShowerID)
	assert.Equal(t, "a", changed[0].FinishedGuestID)
	assert.Equal(t, models.ShowerCleaning, next[0].Status)
	assert.Equal(t, models.ShowerInUse, next[1].Status)
	assert.Equal(t, models.ShowerReady, next[2].Status)
	assert.Equal(t, models.ShowerInUse, set[0].Status, "input set must not change")

	assert.Equal(t, 1, Find(next, "2"))
	assert.Equal(t, -1, Find(next, "9"))
}
