package service

import (
	"fmt"
	"time"

	"shower_intake/internal/models"
	"shower_intake/internal/timeutil"
)

type sample struct {
	first, last, dob, race string
	startedAgo, minutes    int
	left                   bool
	shower                 string
	mutate                 func(*models.Guest)
}

var samples = []sample{
	{"John", "Doe", "1985-04-12", "W", 120, 18, false, "Shower 1", func(g *models.Guest) {
		g.Clothing, g.Homeless, g.New = true, true, true
	}},
	{"Maria", "Gonzalez", "1990-09-05", "H", 90, 20, true, "Shower 2", func(g *models.Guest) {
		g.Valeo = true
		g.Comment = "Very polite"
	}},
	{"Darnell", "Smith", "1978-01-22", "AA", 60, 22, false, "Shower 3", func(g *models.Guest) {
		g.Veteran = true
	}},
	{"Aiko", "Tanaka", "1995-12-03", "A", 45, 19, false, "Shower 1", nil},
	{"Robert", "Whitefeather", "1982-07-19", "NA", 30, 21, true, "Shower 2", func(g *models.Guest) {
		g.Homeless = true
	}},
}

// SampleGuests returns demo guests who already showered today, checked in
// fifteen minutes before their shower started.
func SampleGuests(now time.Time) []models.Guest {
	out := make([]models.Guest, 0, len(samples))
	for i, s := range samples {
		start := now.Add(-time.Duration(s.startedAgo) * time.Minute)
		end := start.Add(time.Duration(s.minutes) * time.Minute)
		g := models.Guest{
			ID:              fmt.Sprintf("seed-%d", i+1),
			Number:          i + 1,
			FirstName:       s.first,
			LastName:        s.last,
			DOB:             s.dob,
			RaceEthnicity:   s.race,
			Shower:          true,
			CheckinAt:       timeutil.Ptr(start.Add(-15 * time.Minute)),
			ShowerStartedAt: timeutil.Ptr(start),
			ShowerEndedAt:   timeutil.Ptr(end),
			ShowerName:      s.shower,
		}
		if s.left {
			g.LeftAt = timeutil.Ptr(end)
		}
		if s.mutate != nil {
			s.mutate(&g)
		}
		out = append(out, g)
	}
	return out
}
