package repository

import "sprout/entities"

type ActivityRepository interface {
	Create(a *entities.CareActivity) error
	BulkInsert(as []entities.CareActivity) error
	ListByPlant(plantID uint, uid string) ([]entities.CareActivity, error)
	Delete(activityID uint, uid string) error
}
