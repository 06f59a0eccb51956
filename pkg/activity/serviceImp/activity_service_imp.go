package serviceImp

import (
	"fmt"
	"time"

	"sprout/entities"
	activityrepo "sprout/pkg/activity/repository"
	plantrepo "sprout/pkg/plant/repository"
	"sprout/pkg/stage"
	taskrepo "sprout/pkg/task/repository"
	"sprout/pkg/tasksync"
	varietyrepo "sprout/pkg/variety/repository"
)

// ActivitySvc records care activities and keeps the task board honest:
// logging an activity completes the matching pending task for the plant's
// current stage, and a thinning activity adjusts task provenance instead.
type ActivitySvc struct {
	activities activityrepo.ActivityRepository
	plants     plantrepo.PlantRepository
	varieties  varietyrepo.VarietyRepository
	tasks      taskrepo.TaskRepository
	coord      *tasksync.Coordinator
	now        func() time.Time
}

func New(a activityrepo.ActivityRepository, p plantrepo.PlantRepository, v varietyrepo.VarietyRepository, t taskrepo.TaskRepository, c *tasksync.Coordinator) *ActivitySvc {
	return &ActivitySvc{activities: a, plants: p, varieties: v, tasks: t, coord: c, now: time.Now}
}

// Log persists one activity and applies its side effects.
func (s *ActivitySvc) Log(a *entities.CareActivity) error {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = s.now()
	}
	if a.Detail.Kind == "" {
		a.Detail.Kind = a.Type
	}
	if a.Type == entities.ActivityThin {
		if a.Detail.Thin == nil {
			return fmt.Errorf("thin activity requires count_before/count_after")
		}
	}
	if err := s.activities.Create(a); err != nil {
		return err
	}
	return s.applyEffects(a)
}

// BulkLog persists several activities in one batch, then applies effects
// per activity.
func (s *ActivitySvc) BulkLog(as []entities.CareActivity) error {
	for i := range as {
		if as[i].OccurredAt.IsZero() {
			as[i].OccurredAt = s.now()
		}
		if as[i].Detail.Kind == "" {
			as[i].Detail.Kind = as[i].Type
		}
	}
	if err := s.activities.BulkInsert(as); err != nil {
		return err
	}
	for i := range as {
		if err := s.applyEffects(&as[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *ActivitySvc) applyEffects(a *entities.CareActivity) error {
	if a.Type == entities.ActivityThin {
		return s.coord.HandleThinning(a.PlantID, a.Detail.Thin.CountAfter)
	}

	// Complete the pending task with the same (plant, type, stage) key.
	p, err := s.plants.Get(a.PlantID)
	if err != nil {
		return err
	}
	v, err := s.varieties.FindByID(p.VarietyID)
	if err != nil {
		return err
	}
	if v != nil && len(v.Timeline) > 0 {
		cur := stage.Current(p.PlantedDate, stage.Timeline(v.Timeline), s.now(), p.Confirmed)
		if _, err := s.tasks.CompleteMatching(entities.TaskKey{
			PlantID: a.PlantID, Type: a.Type, Stage: cur,
		}); err != nil {
			return err
		}
	}
	s.coord.Request(a.PlantID)
	return nil
}

func (s *ActivitySvc) ListByPlant(plantID uint, uid string) ([]entities.CareActivity, error) {
	return s.activities.ListByPlant(plantID, uid)
}

func (s *ActivitySvc) Delete(activityID uint, uid string) error {
	return s.activities.Delete(activityID, uid)
}
