package entities

import "time"

// StageThreshold is one step of a variety's growth timeline: the stage
// begins StartDays after planting (cumulative, strictly increasing in
// well-formed data).
type StageThreshold struct {
	Stage     string `json:"stage"`
	StartDays int    `json:"start_days"`
}

// FertilizerProduct is one candidate product within a fertilizing entry.
type FertilizerProduct struct {
	Product  string   `json:"product"`
	Dilution string   `json:"dilution,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Method   string   `json:"method,omitempty"` // soil-drench|foliar|top-dress
}

// WateringEntry is a stage's watering protocol. StartDays is the entry's
// lead time from stage start; Dynamic entries track the live stage
// boundary instead of freezing at first generation.
type WateringEntry struct {
	Amount    *float64 `json:"amount"`
	Unit      string   `json:"unit,omitempty"`
	StartDays int      `json:"start_days"`
	Dynamic   bool     `json:"dynamic,omitempty"`
}

type FertilizingEntry struct {
	Products  []FertilizerProduct `json:"products"`
	StartDays int                 `json:"start_days"`
	Dynamic   bool                `json:"dynamic,omitempty"`
}

// CareProtocols is a variety's stage-indexed care table. Either map may be
// partially populated; absent stages fall through to category defaults.
type CareProtocols struct {
	Watering    map[string]WateringEntry    `json:"watering,omitempty"`
	Fertilizing map[string]FertilizingEntry `json:"fertilizing,omitempty"`
}

type Variety struct {
	VarietyID uint   `gorm:"primaryKey" json:"variety_id"`
	Name      string `json:"name"`
	Category  string `json:"category" gorm:"index"` // fallback recommendation bucket

	Timeline  []StageThreshold `gorm:"serializer:json" json:"timeline"`
	Protocols *CareProtocols   `gorm:"serializer:json" json:"protocols,omitempty"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
