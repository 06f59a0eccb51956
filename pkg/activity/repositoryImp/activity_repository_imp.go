package repositoryImp

import (
	"gorm.io/gorm"

	"sprout/entities"
	"sprout/pkg/activity/repository"
)

type activityRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ActivityRepository { return &activityRepo{db} }

func (r *activityRepo) Create(a *entities.CareActivity) error { return r.db.Create(a).Error }

func (r *activityRepo) BulkInsert(as []entities.CareActivity) error {
	if len(as) == 0 {
		return nil
	}
	return r.db.Create(&as).Error
}

func (r *activityRepo) ListByPlant(plantID uint, uid string) ([]entities.CareActivity, error) {
	var out []entities.CareActivity
	if err := r.db.Where("plant_id = ? AND user_id = ?", plantID, uid).
		Order("occurred_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) Delete(activityID uint, uid string) error {
	res := r.db.Where("activity_id = ? AND user_id = ?", activityID, uid).Delete(&entities.CareActivity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
