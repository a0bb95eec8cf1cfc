package models

import "time"

// Action is the operator hint set from the queue view. It takes part in status
// derivation but is not the status itself.
type Action string

const (
	ActionNone        Action = ""
	ActionGuestLeft   Action = "guest_left"
	ActionMoveToNext  Action = "move_to_next"
	ActionStandby     Action = "standby"
	ActionGuestBanned Action = "guest_banned"
)

// Valid reports whether a is one of the known operator actions.
func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionGuestLeft, ActionMoveToNext, ActionStandby, ActionGuestBanned:
		return true
	}
	return false
}

// Status is the canonical guest state derived from timestamps and action.
type Status string

const (
	StatusShowering Status = "Showering"
	StatusShowered  Status = "Showered"
	StatusDone      Status = "Done"
	StatusLeft      Status = "Left"
	StatusBanned    Status = "Banned"
	StatusQueued    Status = "Queued"
	StatusNextUp    Status = "Next up"
	StatusStandby   Status = "Standby"
)

// RaceEthnicityOption is a selectable demographic code.
type RaceEthnicityOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var RaceEthnicityOptions = []RaceEthnicityOption{
	{Value: "W", Label: "White"},
	{Value: "AA", Label: "African American"},
	{Value: "NA", Label: "Native American"},
	{Value: "H", Label: "Hispanic"},
	{Value: "A", Label: "Asian"},
	{Value: "NH", Label: "Non-Hispanic"},
	{Value: "AO", Label: "All Other"},
}

// RaceEthnicityLabel returns the display label for a code, or the code itself
// when it is not in the table.
func RaceEthnicityLabel(code string) string {
	for _, opt := range RaceEthnicityOptions {
		if opt.Value == code {
			return opt.Label
		}
	}
	return code
}

// Guest is a person moving through intake and shower service.
type Guest struct {
	ID     string `json:"id"`
	Number int    `json:"number"` // queue number, unique per local day

	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DOB           string `json:"dob,omitempty"` // YYYY-MM-DD
	RaceEthnicity string `json:"race_ethnicity,omitempty"`

	Shower   bool   `json:"shower"`
	Clothing bool   `json:"clothing"`
	Homeless bool   `json:"homeless"`
	New      bool   `json:"new"`
	Veteran  bool   `json:"veteran"`
	Valeo    bool   `json:"valeo"` // partner program
	Comment  string `json:"comment"`

	Action Action `json:"action"`
	Banned bool   `json:"banned"`

	CheckinAt           *time.Time `json:"checkin_at"`
	ExpectedStartTimeAt *time.Time `json:"expected_start_time_at"`
	ExpectedEndTimeAt   *time.Time `json:"expected_end_time_at"`
	ShowerStartedAt     *time.Time `json:"shower_started_at"`
	ShowerEndedAt       *time.Time `json:"shower_ended_at"`
	LeftAt              *time.Time `json:"left_at"`
	ReturnedAt          *time.Time `json:"returned_at"`

	ShowerName string `json:"shower_name,omitempty"`
}

// FullName joins first and last name with a single space.
func (g Guest) FullName() string {
	return g.FirstName + " " + g.LastName
}
