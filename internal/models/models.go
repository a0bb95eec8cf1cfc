package models

import "time"

// BannedEntry blocks intake for a name, either permanently or until a date.
type BannedEntry struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	DOB                 string    `json:"dob,omitempty"`
	RaceEthnicity       string    `json:"race_ethnicity,omitempty"`
	BannedAt            time.Time `json:"banned_at"`
	BannedUntilDate     string    `json:"banned_until_date,omitempty"` // YYYY-MM-DD, empty when permanent
	IsPermanentlyBanned bool      `json:"is_permanently_banned"`
}

// Settings are operator-editable site settings.
type Settings struct {
	Timezone string `json:"timezone"` // IANA id, empty means host zone
	Location string `json:"location"`
}

// KVRecord is the single table behind the Postgres key-value backend.
type KVRecord struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KVRecord) TableName() string { return "kv_records" }
