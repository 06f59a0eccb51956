package repositoryImp

import (
	"sync"

	"gorm.io/gorm"

	"sprout/entities"
	"sprout/pkg/plant/repository"
)

type plantRepo struct {
	db *gorm.DB

	mu   sync.Mutex
	subs map[string]map[int]func([]entities.Plant)
	next int
}

func New(db *gorm.DB) repository.PlantRepository {
	return &plantRepo{db: db, subs: map[string]map[int]func([]entities.Plant){}}
}

func (r *plantRepo) Create(p *entities.Plant) error {
	p.Active = true
	if p.Count <= 0 {
		p.Count = 1
	}
	if err := r.db.Create(p).Error; err != nil {
		return err
	}
	r.notify(p.UserID)
	return nil
}

func (r *plantRepo) FindByID(id uint, uid string) (*entities.Plant, error) {
	var p entities.Plant
	if err := r.db.Where("plant_id = ? AND user_id = ?", id, uid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *plantRepo) Get(id uint) (*entities.Plant, error) {
	var p entities.Plant
	if err := r.db.Where("plant_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *plantRepo) ListActiveByUser(uid string) ([]entities.Plant, error) {
	var out []entities.Plant
	if err := r.db.Where("user_id = ? AND active = ?", uid, true).Order("plant_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *plantRepo) ConfirmStage(id uint, uid string, conf *entities.StageConfirmation) error {
	res := r.db.Model(&entities.Plant{}).
		Where("plant_id = ? AND user_id = ?", id, uid).
		Update("confirmed", conf)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.notify(uid)
	return nil
}

func (r *plantRepo) UpdateCount(id uint, count int) error {
	return r.db.Model(&entities.Plant{}).Where("plant_id = ?", id).Update("count", count).Error
}

func (r *plantRepo) Deactivate(id uint, uid string) error {
	res := r.db.Model(&entities.Plant{}).
		Where("plant_id = ? AND user_id = ?", id, uid).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.notify(uid)
	return nil
}

func (r *plantRepo) SubscribePlantsForUser(uid string, onPlants func([]entities.Plant)) func() {
	r.mu.Lock()
	if r.subs[uid] == nil {
		r.subs[uid] = map[int]func([]entities.Plant){}
	}
	id := r.next
	r.next++
	r.subs[uid][id] = onPlants
	r.mu.Unlock()

	if ps, err := r.ListActiveByUser(uid); err == nil {
		onPlants(ps)
	}
	return func() {
		r.mu.Lock()
		delete(r.subs[uid], id)
		r.mu.Unlock()
	}
}

func (r *plantRepo) notify(uid string) {
	r.mu.Lock()
	cbs := make([]func([]entities.Plant), 0, len(r.subs[uid]))
	for _, cb := range r.subs[uid] {
		cbs = append(cbs, cb)
	}
	r.mu.Unlock()
	if len(cbs) == 0 {
		return
	}
	ps, err := r.ListActiveByUser(uid)
	if err != nil {
		return
	}
	for _, cb := range cbs {
		cb(ps)
	}
}
