package entities

import "time"

const ActivityThin = "thin"

// ThinDetail records a group-size reduction. Thinning never resets growth
// stage; it only adjusts task provenance.
type ThinDetail struct {
	CountBefore int `json:"count_before"`
	CountAfter  int `json:"count_after"`
}

// ActivityDetail mirrors TaskDetail's variant shape plus the thin payload.
type ActivityDetail struct {
	Kind      string           `json:"kind"` // water|fertilize|observe|thin
	Water     *WaterDetail     `json:"water,omitempty"`
	Fertilize *FertilizeDetail `json:"fertilize,omitempty"`
	Observe   *ObserveDetail   `json:"observe,omitempty"`
	Thin      *ThinDetail      `json:"thin,omitempty"`
}

type CareActivity struct {
	ActivityID uint           `gorm:"primaryKey" json:"activity_id"`
	PlantID    uint           `gorm:"index" json:"plant_id"`
	UserID     string         `gorm:"index" json:"user_id"`
	Type       string         `json:"type"` // water|fertilize|observe|thin
	OccurredAt time.Time      `json:"occurred_at"`
	Detail     ActivityDetail `gorm:"serializer:json" json:"detail"`
	Notes      string         `json:"notes"`
	CreatedAt  time.Time
}
