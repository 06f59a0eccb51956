package repositoryImp

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"sprout/entities"
	"sprout/pkg/task/repository"
)

type taskRepo struct {
	db *gorm.DB

	mu   sync.Mutex
	subs map[string]map[int]subscriber
	next int
}

type subscriber struct {
	onTasks func([]entities.ScheduledTask)
	onError func(error)
}

func New(db *gorm.DB) repository.TaskRepository {
	return &taskRepo{db: db, subs: map[string]map[int]subscriber{}}
}

func (r *taskRepo) BulkInsert(ts []entities.ScheduledTask) ([]string, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	if err := r.db.Create(&ts).Error; err != nil {
		return nil, err
	}
	ids := make([]string, len(ts))
	users := map[string]struct{}{}
	for i := range ts {
		ids[i] = ts[i].TaskID
		users[ts[i].UserID] = struct{}{}
	}
	for uid := range users {
		r.notify(uid)
	}
	return ids, nil
}

func (r *taskRepo) DeleteByIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := r.usersOf(ids)
	if err != nil {
		return err
	}
	if err := r.db.Where("task_id IN ?", ids).Delete(&entities.ScheduledTask{}).Error; err != nil {
		return err
	}
	for uid := range users {
		r.notify(uid)
	}
	return nil
}

func (r *taskRepo) DeletePendingForPlant(plantID uint) error {
	var uid string
	r.db.Model(&entities.ScheduledTask{}).Where("plant_id = ?", plantID).Limit(1).Pluck("user_id", &uid)
	if err := r.db.Where("plant_id = ? AND status = ?", plantID, entities.StatusPending).
		Delete(&entities.ScheduledTask{}).Error; err != nil {
		return err
	}
	if uid != "" {
		r.notify(uid)
	}
	return nil
}

func (r *taskRepo) AllForPlant(plantID uint) ([]entities.ScheduledTask, error) {
	var out []entities.ScheduledTask
	if err := r.db.Where("plant_id = ?", plantID).Order("due_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) PendingForPlant(plantID uint) ([]entities.ScheduledTask, error) {
	var out []entities.ScheduledTask
	if err := r.db.Where("plant_id = ? AND status = ?", plantID, entities.StatusPending).
		Order("due_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListForUser(uid string, from, to string) ([]entities.ScheduledTask, error) {
	var s, e time.Time
	var err error
	if from != "" {
		if s, err = time.Parse("2006-01-02", from); err != nil {
			return nil, fmt.Errorf("%w: from=%q", repository.ErrBadDateRange, from)
		}
	}
	if to != "" {
		if e, err = time.Parse("2006-01-02", to); err != nil {
			return nil, fmt.Errorf("%w: to=%q", repository.ErrBadDateRange, to)
		}
	}
	q := r.db.Where("user_id = ?", uid)
	if !s.IsZero() {
		q = q.Where("due_date >= ?", s)
	}
	if !e.IsZero() {
		q = q.Where("due_date <= ?", e)
	}
	var out []entities.ScheduledTask
	if err := q.Order("due_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) PatchStatus(taskID string, status string) error {
	users, err := r.usersOf([]string{taskID})
	if err != nil {
		return err
	}
	if err := r.db.Model(&entities.ScheduledTask{}).Where("task_id = ?", taskID).
		Update("status", status).Error; err != nil {
		return err
	}
	for uid := range users {
		r.notify(uid)
	}
	return nil
}

func (r *taskRepo) CompleteMatching(key entities.TaskKey) (bool, error) {
	pending, err := r.PendingForPlant(key.PlantID)
	if err != nil {
		return false, err
	}
	for _, t := range pending {
		if t.Key() == key {
			return true, r.PatchStatus(t.TaskID, entities.StatusCompleted)
		}
	}
	return false, nil
}

func (r *taskRepo) UpdateSourcePlantCount(plantID uint, count int) error {
	tasks, err := r.AllForPlant(plantID)
	if err != nil {
		return err
	}
	uid := ""
	for i := range tasks {
		t := &tasks[i]
		if t.Source.PlantCount == count {
			continue
		}
		t.Source.PlantCount = count
		if err := r.db.Model(&entities.ScheduledTask{}).Where("task_id = ?", t.TaskID).
			Update("source", t.Source).Error; err != nil {
			return err
		}
		uid = t.UserID
	}
	if uid != "" {
		r.notify(uid)
	}
	return nil
}

func (r *taskRepo) SubscribeUserTasks(uid string, onTasks func([]entities.ScheduledTask), onError func(error)) func() {
	r.mu.Lock()
	if r.subs[uid] == nil {
		r.subs[uid] = map[int]subscriber{}
	}
	id := r.next
	r.next++
	r.subs[uid][id] = subscriber{onTasks: onTasks, onError: onError}
	r.mu.Unlock()

	r.deliver(uid, subscriber{onTasks: onTasks, onError: onError})
	return func() {
		r.mu.Lock()
		delete(r.subs[uid], id)
		r.mu.Unlock()
	}
}

func (r *taskRepo) usersOf(ids []string) (map[string]struct{}, error) {
	var uids []string
	if err := r.db.Model(&entities.ScheduledTask{}).Where("task_id IN ?", ids).
		Distinct().Pluck("user_id", &uids).Error; err != nil {
		return nil, err
	}
	out := map[string]struct{}{}
	for _, u := range uids {
		out[u] = struct{}{}
	}
	return out, nil
}

func (r *taskRepo) pendingForUser(uid string) ([]entities.ScheduledTask, error) {
	var out []entities.ScheduledTask
	if err := r.db.Where("user_id = ? AND status = ?", uid, entities.StatusPending).
		Order("due_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) deliver(uid string, sub subscriber) {
	ts, err := r.pendingForUser(uid)
	if err != nil {
		if sub.onError != nil {
			sub.onError(err)
		}
		return
	}
	sub.onTasks(ts)
}

func (r *taskRepo) notify(uid string) {
	r.mu.Lock()
	subs := make([]subscriber, 0, len(r.subs[uid]))
	for _, s := range r.subs[uid] {
		subs = append(subs, s)
	}
	r.mu.Unlock()
	for _, s := range subs {
		r.deliver(uid, s)
	}
}
