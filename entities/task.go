package entities

import "time"

// Task types and statuses.
const (
	TaskWater     = "water"
	TaskFertilize = "fertilize"
	TaskObserve   = "observe"

	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// WaterDetail / FertilizeDetail / ObserveDetail are the variant payloads of
// TaskDetail and ActivityDetail.
type WaterDetail struct {
	Amount *float64 `json:"amount,omitempty"`
	Unit   string   `json:"unit,omitempty"`
}

type FertilizeDetail struct {
	Products []FertilizerProduct `json:"products,omitempty"`
}

type ObserveDetail struct {
	Checklist []string `json:"checklist,omitempty"`
}

// TaskDetail is a closed tagged variant keyed by Kind. Exactly one payload
// field matching Kind is set; consumers switch on Kind exhaustively.
type TaskDetail struct {
	Kind      string           `json:"kind"` // water|fertilize|observe
	Water     *WaterDetail     `json:"water,omitempty"`
	Fertilize *FertilizeDetail `json:"fertilize,omitempty"`
	Observe   *ObserveDetail   `json:"observe,omitempty"`
}

// ProtocolSource records where a task came from. Stage participates in the
// dedup key (plant_id, type, stage); Dynamic marks a due date that tracks
// the live stage boundary. PlantCount is provenance only and is adjusted in
// place by thinning.
type ProtocolSource struct {
	Stage             string `json:"stage"`
	OriginalStartDays int    `json:"original_start_days"`
	Dynamic           bool   `json:"dynamic,omitempty"`
	PlantCount        int    `json:"plant_count,omitempty"`
}

type ScheduledTask struct {
	TaskID  string         `gorm:"primaryKey" json:"task_id"` // uuid, engine-assigned
	PlantID uint           `gorm:"index" json:"plant_id"`
	UserID  string         `gorm:"index" json:"user_id"`
	Type    string         `json:"type"` // water|fertilize|observe
	Title   string         `json:"title"`
	Detail  TaskDetail     `gorm:"serializer:json" json:"detail"`
	DueDate time.Time      `json:"due_date"`
	Status  string         `json:"status"` // pending|completed
	Source  ProtocolSource `gorm:"serializer:json" json:"source"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskKey is the dedup tuple: at most one pending task per key.
type TaskKey struct {
	PlantID uint
	Type    string
	Stage   string
}

func (t *ScheduledTask) Key() TaskKey {
	return TaskKey{PlantID: t.PlantID, Type: t.Type, Stage: t.Source.Stage}
}
