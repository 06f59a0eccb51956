package repositoryImp

import (
	"errors"

	"gorm.io/gorm"

	"sprout/entities"
	"sprout/pkg/variety/repository"
)

type varietyRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.VarietyRepository { return &varietyRepo{db} }

func (r *varietyRepo) Create(v *entities.Variety) error { return r.db.Create(v).Error }

func (r *varietyRepo) FindByID(id uint) (*entities.Variety, error) {
	var v entities.Variety
	if err := r.db.Where("variety_id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *varietyRepo) FindByName(name string) (*entities.Variety, error) {
	var v entities.Variety
	if err := r.db.Where("name = ?", name).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *varietyRepo) List() ([]entities.Variety, error) {
	var out []entities.Variety
	if err := r.db.Order("variety_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *varietyRepo) UpsertByName(v *entities.Variety) error {
	cur, err := r.FindByName(v.Name)
	if err != nil {
		return err
	}
	if cur == nil {
		return r.db.Create(v).Error
	}
	v.VarietyID = cur.VarietyID
	return r.db.Save(v).Error
}
