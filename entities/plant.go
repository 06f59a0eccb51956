package entities

import "time"

// StageConfirmation pins stage progression to a user-asserted baseline.
// Stage and ConfirmedAt always travel together; ConfirmedAt becomes the
// new origin for stage math.
type StageConfirmation struct {
	Stage       string    `json:"stage"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type Plant struct {
	PlantID     uint      `gorm:"primaryKey" json:"plant_id"`
	UserID      string    `json:"user_id" gorm:"index"`
	VarietyID   uint      `json:"variety_id" gorm:"index"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`  // free-form: bed 3, south window...
	Container   string    `json:"container"` // free-form: 5gal pot, raised bed...
	Count       int       `json:"count"`     // plants in the group; reduced by thinning
	PlantedDate time.Time `json:"planted_date"`

	Confirmed *StageConfirmation `gorm:"serializer:json" json:"confirmed,omitempty"`

	Active bool `json:"active"` // soft-deactivated, never hard-deleted

	CreatedAt time.Time
	UpdatedAt time.Time
}
