package repository

import (
	"errors"

	"sprout/entities"
)

// ErrBadDateRange marks an unparseable from/to filter; a typoed date must
// not degrade into an unfiltered listing.
var ErrBadDateRange = errors.New("date filter must be YYYY-MM-DD")

type TaskRepository interface {
	// BulkInsert writes all tasks in one batch and returns their ids.
	BulkInsert(ts []entities.ScheduledTask) ([]string, error)
	// DeleteByIDs removes superseded pending tasks in one batch.
	DeleteByIDs(ids []string) error
	// DeletePendingForPlant clears every pending task for a plant (full reset).
	DeletePendingForPlant(plantID uint) error
	// AllForPlant returns pending and completed tasks; the transpiler needs
	// both to honor the never-resurrect rule.
	AllForPlant(plantID uint) ([]entities.ScheduledTask, error)
	PendingForPlant(plantID uint) ([]entities.ScheduledTask, error)
	ListForUser(uid string, from, to string) ([]entities.ScheduledTask, error)
	PatchStatus(taskID string, status string) error
	// CompleteMatching marks the pending task for (plant, type, stage) as
	// completed; returns false when no such task exists.
	CompleteMatching(key entities.TaskKey) (bool, error)
	// UpdateSourcePlantCount rewrites provenance after thinning, leaving
	// task shape, status and due dates untouched.
	UpdateSourcePlantCount(plantID uint, count int) error
	// SubscribeUserTasks delivers the user's pending set now and after every
	// write. Returns an unsubscribe func.
	SubscribeUserTasks(uid string, onTasks func([]entities.ScheduledTask), onError func(error)) func()
}
